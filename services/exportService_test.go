package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, patient, doc := f.clinic(t)
	f.book(t, patient, doc.ID, tomorrowAt(10))

	var buf bytes.Buffer
	counts, err := NewExporter(f.repos.Users, f.repos.Directory, f.repos.Appointments).Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Users": 3, "Hospitals": 1, "Doctors": 1, "Appointments": 1}, counts)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Users", "Hospitals", "Doctors", "Appointments"}, book.GetSheetList())

	rows, err := book.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ID", "Email", "Name", "Role", "Phone", "Created At"}, rows[0])
	for _, row := range rows {
		for _, cell := range row {
			assert.NotContains(t, cell, "$2a$", "password hashes are never exported")
		}
	}

	rows, err = book.GetRows("Appointments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pending", rows[1][5])
}
