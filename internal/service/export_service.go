package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/pkg/config"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/export"
)

type blobUploader interface {
	Upload(ctx context.Context, relPath string, data []byte, contentType string) (string, error)
}

// ExportService renders class rosters and student marksheets and uploads
// them to the blob store, returning the public URL.
type ExportService struct {
	students studentRepository
	exams    examRepository
	blobs    blobUploader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	cfg      config.ExportsConfig
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(students studentRepository, exams examRepository, blobs blobUploader, cfg config.ExportsConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		exams:    exams,
		blobs:    blobs,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		cfg:      cfg,
		logger:   logger,
	}
}

// RosterCSV exports the students matching the filter as a CSV and uploads it.
func (s *ExportService) RosterCSV(ctx context.Context, filter models.StudentFilter) (string, error) {
	if !s.cfg.Enabled {
		return "", appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if len(students) == 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no students matched the filter")
	}

	data := export.Dataset{
		Headers: []string{"Register Number", "Name", "Email", "Course", "Program", "Year", "Section", "Fees Paid"},
	}
	for _, st := range students {
		data.Rows = append(data.Rows, map[string]string{
			"Register Number": st.RegisterNumber,
			"Name":            st.FullName,
			"Email":           st.Email,
			"Course":          st.Course,
			"Program":         st.Program,
			"Year":            strconv.Itoa(st.Year),
			"Section":         st.Section,
			"Fees Paid":       strconv.FormatBool(st.FeesPaid),
		})
	}
	content, err := s.csv.Render(data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	// the blob store already namespaces objects under the configured prefix
	relPath := fmt.Sprintf("rosters/roster_%s.csv", time.Now().UTC().Format("20060102_150405"))
	url, err := s.blobs.Upload(ctx, relPath, content, "text/csv")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upload roster")
	}
	s.logger.Info("roster exported", zap.Int("students", len(students)), zap.String("url", url))
	return url, nil
}

// MarksheetPDF renders one student's result sheet for an exam and uploads it.
func (s *ExportService) MarksheetPDF(ctx context.Context, departmentName, registerNumber, examID string) (string, error) {
	if !s.cfg.Enabled {
		return "", appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	student, err := s.students.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	result, err := s.exams.FindResult(ctx, registerNumber, examID)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "result not found")
	}

	sheet := export.Marksheet{
		DepartmentName: departmentName,
		ExamName:       result.ExamName,
		StudentName:    student.FullName,
		RegisterNumber: student.RegisterNumber,
		Course:         student.Course,
		Program:        student.Program,
		Year:           student.Year,
		Remarks:        result.Remarks,
	}
	for _, mark := range result.Marks {
		sheet.Rows = append(sheet.Rows, export.MarksheetRow{
			Subject:  mark.Subject,
			Internal: strconv.Itoa(mark.Internal),
			External: strconv.Itoa(mark.External),
			Total:    strconv.Itoa(mark.Total),
			Grade:    mark.Grade,
		})
	}
	content, err := s.pdf.RenderMarksheet(sheet)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render marksheet")
	}

	relPath := fmt.Sprintf("marksheets/%s_%s.pdf", registerNumber, examID)
	url, err := s.blobs.Upload(ctx, relPath, content, "application/pdf")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upload marksheet")
	}
	s.logger.Info("marksheet exported",
		zap.String("register_number", registerNumber),
		zap.String("exam_id", examID),
		zap.String("url", url))
	return url, nil
}
