package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"slotbook/internal/metrics"
	"slotbook/internal/models"

	"github.com/xuri/excelize/v2"
)

// handleExport streams an xlsx schedule of appointments starting inside
// [from, to]. Service-key only; meant for back-office reporting.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.auth.requireServiceKey(w, r) {
		return
	}

	from, to, err := exportRange(r, s.booking.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appointments, err := s.booking.ListAppointmentsByRange(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list appointments for export")
		writeError(w, http.StatusInternalServerError, "failed to export appointments")
		return
	}

	f, err := buildScheduleWorkbook(appointments, from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build export workbook")
		writeError(w, http.StatusInternalServerError, "failed to export appointments")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("appointments_%s_to_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to write export workbook")
	}
}

// exportRange reads from/to query params; defaults to the coming 7 days.
// Dates are interpreted in the reference zone.
func exportRange(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	now := time.Now()
	from := now
	to := now.AddDate(0, 0, 7)

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", raw)
		}
		from = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", raw)
		}
		// Include the whole final day.
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}

func buildScheduleWorkbook(appointments []*models.Appointment, from, to time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Appointments"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		from.Format("02.01.2006"), to.Format("02.01.2006")))
	_ = f.MergeCell(sheetName, "A1", "H1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"Start", "End", "Title", "Seller", "Seller Email", "Buyer", "Buyer Email", "Status"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, appt := range appointments {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), appt.StartTime.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), appt.EndTime.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), appt.Title)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), appt.SellerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), appt.SellerEmail)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), appt.BuyerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), appt.BuyerEmail)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), appt.Status)
	}

	_ = f.SetColWidth(sheetName, "A", "B", 18)
	_ = f.SetColWidth(sheetName, "C", "C", 40)
	_ = f.SetColWidth(sheetName, "D", "G", 25)
	_ = f.SetColWidth(sheetName, "H", "H", 12)

	_ = f.DeleteSheet("Sheet1")

	return f, nil
}
