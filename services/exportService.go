package services

import (
	"SmartClinic/repositories"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Exporter writes a spreadsheet snapshot of the clinic data. Credentials are
// never exported.
type Exporter struct {
	users        repositories.UserRepository
	directory    repositories.DirectoryRepository
	appointments repositories.AppointmentRepository
}

func NewExporter(users repositories.UserRepository, directory repositories.DirectoryRepository, appointments repositories.AppointmentRepository) *Exporter {
	return &Exporter{users: users, directory: directory, appointments: appointments}
}

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// Export writes one sheet per table and returns the row count of each.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (map[string]int, error) {
	sheets, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(sheets))

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}
		if err := writeRow(f, sh.name, 1, sh.header); err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(sh.header), 1)
		if err := f.SetCellStyle(sh.name, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		counts[sh.name] = len(sh.rows)
		for i, row := range sh.rows {
			if err := writeRow(f, sh.name, i+2, row); err != nil {
				return nil, err
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return counts, nil
}

func writeRow(f *excelize.File, sheetName string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheetName, row, err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (e *Exporter) collect(ctx context.Context) ([]sheet, error) {
	users, err := e.users.GetAllUsers(ctx)
	if err != nil {
		return nil, storageErr("export users", err)
	}
	hospitals, err := e.directory.ListHospitals(ctx)
	if err != nil {
		return nil, storageErr("export hospitals", err)
	}
	doctors, err := e.directory.ListDoctors(ctx, "")
	if err != nil {
		return nil, storageErr("export doctors", err)
	}
	appointments, err := e.appointments.ListAll(ctx)
	if err != nil {
		return nil, storageErr("export appointments", err)
	}

	userSheet := sheet{name: "Users", header: []interface{}{"ID", "Email", "Name", "Role", "Phone", "Created At"}}
	for _, u := range users {
		created := u.CreatedAt
		userSheet.rows = append(userSheet.rows, []interface{}{u.ID, u.Email, u.Name, string(u.Role), u.Phone, formatTime(&created)})
	}

	hospitalSheet := sheet{name: "Hospitals", header: []interface{}{"ID", "Name", "Address", "Contact", "Admin ID"}}
	for _, h := range hospitals {
		hospitalSheet.rows = append(hospitalSheet.rows, []interface{}{h.ID, h.Name, h.Address, h.Contact, h.AdminID})
	}

	doctorSheet := sheet{name: "Doctors", header: []interface{}{"ID", "User ID", "Name", "Hospital ID", "Specialization", "Experience", "Consultation Fee"}}
	for _, d := range doctors {
		doctorSheet.rows = append(doctorSheet.rows, []interface{}{d.ID, d.UserID, d.Name(), d.HospitalID, d.Specialization, d.Experience, d.ConsultationFee})
	}

	appointmentSheet := sheet{name: "Appointments", header: []interface{}{"ID", "Doctor ID", "Patient ID", "Hospital ID", "Appointment Time", "Status", "Completed At"}}
	for _, a := range appointments {
		at := a.AppointmentTime
		appointmentSheet.rows = append(appointmentSheet.rows, []interface{}{
			a.ID, a.DoctorID, a.PatientID, a.HospitalID, formatTime(&at), string(a.Status), formatTime(a.CompletedAt),
		})
	}

	return []sheet{userSheet, hospitalSheet, doctorSheet, appointmentSheet}, nil
}
