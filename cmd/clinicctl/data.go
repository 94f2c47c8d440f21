package main

import (
	"SmartClinic/services"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load hospital admins, hospitals and doctors from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := services.ParseSeed(f)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			users, directory, _ := e.repos()
			report, err := services.NewSeedImporter(users, directory, e.log).Import(cmd.Context(), seed)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().String("file", "", "Path to the YAML seed file")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write users, hospitals, doctors and appointments to a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			f, err := os.Create(out)
			if err != nil {
				return err
			}

			counts, err := services.NewExporter(e.repos()).Export(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d rows\n", name, counts[name])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("out", "clinic.xlsx", "Output spreadsheet path")
	return cmd
}
