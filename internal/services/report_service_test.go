package services

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exam-portal/internal/models"
)

func TestReportService_ExportXLSX(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reports/exam-results", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12", r.URL.Query().Get("exam_id"))
		writeJSON(w, http.StatusOK, models.Report{
			Title:   "Resultados",
			Columns: []string{"estudiante", "nota"},
			Rows: []models.ReportRow{
				{"estudiante": "Ana", "nota": 9.5},
				{"estudiante": "Luis", "nota": 6},
			},
		})
	})
	svc := NewReportService(newBackend(t, mux), discardLogger())

	var buf bytes.Buffer
	err := svc.ExportXLSX(context.Background(), "exam-results", map[string][]string{"exam_id": {"12"}}, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("exam-results")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"estudiante", "nota"},
		{"Ana", "9.5"},
		{"Luis", "6"},
	}, rows)
}

func TestReportService_BackendError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reports/{kind}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "reporte desconocido"})
	})
	svc := NewReportService(newBackend(t, mux), discardLogger())

	var buf bytes.Buffer
	err := svc.ExportXLSX(context.Background(), "nope", nil, &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestReportColumns(t *testing.T) {
	declared := &models.Report{Columns: []string{"b", "a"}}
	assert.Equal(t, []string{"b", "a"}, ReportColumns(declared))

	derived := &models.Report{Rows: []models.ReportRow{{"z": 1, "a": 2}, {"m": 3}}}
	assert.Equal(t, []string{"a", "m", "z"}, ReportColumns(derived))
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "exam-results", want: "exam-results"},
		{in: "a/b:c", want: "a_b_c"},
		{in: "  ", want: "Reporte"},
		{in: "una-hoja-con-un-nombre-demasiado-largo", want: "una-hoja-con-un-nombre-demasiad"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(tt.in))
		})
	}
}
