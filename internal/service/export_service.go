package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type timetableReader interface {
	Get(ctx context.Context, scope models.TimetableScope) (*dto.TimetableView, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders persisted timetables as a weekly grid.
type ExportService struct {
	timetables timetableReader
	csv        datasetRenderer
	pdf        datasetRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(timetables timetableReader, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetables: timetables,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Export renders the section timetable in the requested format (csv by default).
func (s *ExportService) Export(ctx context.Context, scope models.TimetableScope, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	view, err := s.timetables.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	dataset := weeklyGrid(view)

	var payload []byte
	contentType := "text/csv"
	switch format {
	case ExportFormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.Render(dataset)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}

	s.logger.Debug("timetable exported",
		zap.String("section_id", scope.SectionID),
		zap.String("format", format),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		Filename:    s.buildFilename(view, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildFilename(view *dto.TimetableView, format string) string {
	timestamp := s.now().Format("20060102_150405")
	return fmt.Sprintf("timetable_%s_%s_%s.%s", sanitizeFilename(view.SessionID), sanitizeFilename(view.SectionID), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// weeklyGrid lays the timetable out with one row per slot and one column per day.
func weeklyGrid(view *dto.TimetableView) export.Dataset {
	headers := []string{"Slot"}
	for _, day := range view.Days {
		headers = append(headers, day.DayName)
	}

	type slotRow struct {
		label string
		cells map[string]string
	}
	rows := make(map[int]*slotRow)
	for _, day := range view.Days {
		for _, slot := range day.Slots {
			row, ok := rows[slot.SlotNumber]
			if !ok {
				row = &slotRow{
					label: fmt.Sprintf("%d (%s-%s)", slot.SlotNumber, slot.StartTime, slot.EndTime),
					cells: make(map[string]string),
				}
				rows[slot.SlotNumber] = row
			}
			row.cells[day.DayName] = cellText(slot)
		}
	}

	numbers := make([]int, 0, len(rows))
	for n := range rows {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Timetable %s / %s", view.SectionID, view.SessionID),
		Headers: headers,
	}
	for _, n := range numbers {
		record := map[string]string{"Slot": rows[n].label}
		for day, text := range rows[n].cells {
			record[day] = text
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset
}

func cellText(slot dto.TimetableSlot) string {
	switch models.SlotType(slot.SlotType) {
	case models.SlotTypeBreak:
		return "Break"
	case models.SlotTypeLunch:
		return "Lunch"
	}
	subject := deref(slot.SubjectID)
	if teacher := deref(slot.TeacherID); teacher != "" {
		return subject + " / " + teacher
	}
	return subject
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
