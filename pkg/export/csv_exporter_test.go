package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderFillsMissingCells(t *testing.T) {
	data := Dataset{
		Headers: []string{"Register No", "Name", "Phone"},
		Rows: []map[string]string{
			{"Register No": "CS2025001", "Name": "Asha Nair", "Phone": "9876543210"},
			{"Register No": "CS2025002", "Name": "Ravi Kumar"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Register No,Name,Phone\nCS2025001,Asha Nair,9876543210\nCS2025002,Ravi Kumar,\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFMarksheetRenders(t *testing.T) {
	sheet := Marksheet{
		DepartmentName: "Department of Computer Science",
		ExamName:       "Semester 1 Internal",
		StudentName:    "Asha Nair",
		RegisterNumber: "CS2025001",
		Course:         "PG",
		Program:        "M.Sc CS",
		Year:           1,
		Rows: []MarksheetRow{
			{Subject: "Data Structures", Internal: "18", External: "54", Total: "72", Grade: "B+"},
		},
	}

	out, err := NewPDFExporter().RenderMarksheet(sheet)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFMarksheetRequiresRows(t *testing.T) {
	_, err := NewPDFExporter().RenderMarksheet(Marksheet{StudentName: "Asha Nair"})
	require.Error(t, err)
}
