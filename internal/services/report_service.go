package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/models"
)

const maxSheetName = 31

type reportService struct {
	client *api.Client
	logger *slog.Logger
}

func NewReportService(client *api.Client, logger *slog.Logger) ReportService {
	return &reportService{client: client, logger: logger}
}

func (s *reportService) Get(ctx context.Context, kind string, query url.Values) (*models.Report, error) {
	return s.client.Report(ctx, kind, query)
}

// ExportXLSX writes the report as a single-sheet workbook: a bold header row
// with the column names followed by one row per report line.
func (s *reportService) ExportXLSX(ctx context.Context, kind string, query url.Values, w io.Writer) error {
	report, err := s.client.Report(ctx, kind, query)
	if err != nil {
		return err
	}

	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WarnContext(ctx, "Failed to close workbook", "error", err)
		}
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook renders report into a new workbook. The caller closes it.
func BuildWorkbook(report *models.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := SheetName(report.Kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	columns := ReportColumns(report)
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	if len(columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range report.Rows {
		values := make([]interface{}, len(columns))
		for j, col := range columns {
			values[j] = row[col]
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return f, nil
}

// ReportColumns returns the declared columns or, when the backend sent none,
// the sorted union of the row keys.
func ReportColumns(report *models.Report) []string {
	if len(report.Columns) > 0 {
		return report.Columns
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range report.Rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// SheetName makes kind usable as a worksheet name.
func SheetName(kind string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(kind))
	if name == "" {
		name = "Reporte"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
