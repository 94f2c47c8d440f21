package main

import (
	"SmartClinic/models"
	"SmartClinic/repositories"
	"SmartClinic/services"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func resetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace the password of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			users, _, _ := e.repos()
			if err := services.NewUserService(users, e.log).ResetPassword(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "New password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func ambulanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ambulance",
		Short: "Dispatch operations on ambulance bookings",
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Advance a booking's dispatch status",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetUint("id")
			status, _ := cmd.Flags().GetString("status")
			number, _ := cmd.Flags().GetString("ambulance-number")
			driver, _ := cmd.Flags().GetString("driver-name")
			driverPhone, _ := cmd.Flags().GetString("driver-phone")
			eta, _ := cmd.Flags().GetDuration("eta")

			update := models.DispatchUpdate{
				Status:          models.AmbulanceStatus(status),
				AmbulanceNumber: number,
				DriverName:      driver,
				DriverPhone:     driverPhone,
			}
			if eta > 0 {
				arrival := time.Now().Add(eta)
				update.EstimatedArrival = &arrival
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			svc := services.NewAmbulanceService(repositories.NewAmbulanceRepository(e.db), nil, e.log)
			booking, err := svc.UpdateStatus(cmd.Context(), id, update)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booking %d is now %s\n", booking.ID, booking.Status)
			return nil
		},
	}
	updateCmd.Flags().Uint("id", 0, "Booking id")
	updateCmd.Flags().String("status", "", "New status: dispatched, arrived, completed or cancelled")
	updateCmd.Flags().String("ambulance-number", "", "Vehicle number, required when dispatching")
	updateCmd.Flags().String("driver-name", "", "Driver name")
	updateCmd.Flags().String("driver-phone", "", "Driver phone")
	updateCmd.Flags().Duration("eta", 0, "Estimated time until arrival")
	_ = updateCmd.MarkFlagRequired("id")
	_ = updateCmd.MarkFlagRequired("status")
	cmd.AddCommand(updateCmd)

	return cmd
}
