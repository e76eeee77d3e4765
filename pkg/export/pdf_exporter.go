package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// MarksheetRow is one subject line on a student marksheet.
type MarksheetRow struct {
	Subject  string
	Internal string
	External string
	Total    string
	Grade    string
}

// Marksheet describes a single student's result sheet.
type Marksheet struct {
	DepartmentName string
	ExamName       string
	StudentName    string
	RegisterNumber string
	Course         string
	Program        string
	Year           int
	Rows           []MarksheetRow
	Remarks        string
}

// PDFExporter renders marksheets and tabular datasets as PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderMarksheet produces a one-page result sheet for a student.
func (e *PDFExporter) RenderMarksheet(sheet Marksheet) ([]byte, error) {
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("marksheet requires at least one subject row")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 16, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, strings.ToUpper(sheet.DepartmentName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, sheet.ExamName, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, fmt.Sprintf("Name: %s", sheet.StudentName), "", 0, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Register No: %s", sheet.RegisterNumber), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Course: %s %s", sheet.Course, sheet.Program), "", 0, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Year: %d", sheet.Year), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Subject", "Internal", "External", "Total", "Grade"}
	widths := []float64{76, 27, 27, 27, 27}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range sheet.Rows {
		cells := []string{row.Subject, row.Internal, row.External, row.Total, row.Grade}
		for i, cell := range cells {
			align := "C"
			if i == 0 {
				align = ""
			}
			pdf.CellFormat(widths[i], 7, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if sheet.Remarks != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "Remarks: "+sheet.Remarks, "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render marksheet pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTable creates a plain tabular PDF for rosters and notice digests.
func (e *PDFExporter) RenderTable(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
