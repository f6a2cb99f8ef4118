package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"attendly/internal/domain/attendance"
)

// Service renders attendance data as downloadable exports. Row limits are
// generous but bounded so an export cannot pull the whole table unpaged.
const maxExportRows = 5000

type Service struct {
	attendance *attendance.Service
}

func NewService(attendanceSvc *attendance.Service) *Service {
	return &Service{attendance: attendanceSvc}
}

func (s *Service) exportRows(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, error) {
	filter.Limit = maxExportRows
	filter.Offset = 0
	rows, _, err := s.attendance.List(ctx, filter)
	return rows, err
}

func (s *Service) AttendanceCSV(ctx context.Context, filter attendance.ListFilter) ([]byte, error) {
	rows, err := s.exportRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"date", "employee", "email", "clock_in", "clock_out", "total_hours", "status", "manual_entry"}); err != nil {
		return nil, err
	}
	for _, rec := range rows {
		clockOut := ""
		if rec.ClockOut != nil {
			clockOut = rec.ClockOut.Format(time.RFC3339)
		}
		if err := writer.Write([]string{
			rec.Date.Format("2006-01-02"),
			rec.EmployeeName,
			rec.EmployeeEmail,
			rec.ClockIn.Format(time.RFC3339),
			clockOut,
			strconv.FormatFloat(rec.TotalHours, 'f', 2, 64),
			rec.Status,
			strconv.FormatBool(rec.IsManualEntry),
		}); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) AttendancePDF(ctx context.Context, filter attendance.ListFilter, generatedAt time.Time) ([]byte, error) {
	stats, err := s.attendance.Stats(ctx, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}
	rows, err := s.exportRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", formatPeriod(filter.StartDate, filter.EndDate)))
	pdf.Ln(10)

	pdf.Cell(0, 7, fmt.Sprintf("Records: %d   Present: %d   Late: %d   Half-day: %d   Absent: %d",
		stats.TotalRecords, stats.PresentRecords, stats.LateRecords, stats.HalfDayRecords, stats.AbsentRecords))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Active employees: %d   Attendance rate: %d%%", stats.TotalEmployees, stats.AttendanceRate))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(24, 7, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(50, 7, "Employee", "1", 0, "", false, 0, "")
	pdf.CellFormat(28, 7, "Clock In", "1", 0, "", false, 0, "")
	pdf.CellFormat(28, 7, "Clock Out", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 7, "Hours", "1", 0, "", false, 0, "")
	pdf.CellFormat(24, 7, "Status", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, rec := range rows {
		clockOut := "-"
		if rec.ClockOut != nil {
			clockOut = rec.ClockOut.Format("15:04")
		}
		pdf.CellFormat(24, 6, rec.Date.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(50, 6, rec.EmployeeName, "1", 0, "", false, 0, "")
		pdf.CellFormat(28, 6, rec.ClockIn.Format("15:04"), "1", 0, "", false, 0, "")
		pdf.CellFormat(28, 6, clockOut, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", rec.TotalHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(24, 6, rec.Status, "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatPeriod(startDate, endDate *time.Time) string {
	start, end := "beginning", "today"
	if startDate != nil {
		start = startDate.Format("2006-01-02")
	}
	if endDate != nil {
		end = endDate.Format("2006-01-02")
	}
	return start + " to " + end
}
