package reportshandler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attendly/internal/domain/attendance"
	"attendly/internal/domain/reports"
	"attendly/internal/transport/http/api"
	"attendly/internal/transport/http/middleware"
	"attendly/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Clock   *attendance.Clock
}

func NewHandler(service *reports.Service, clock *attendance.Clock) *Handler {
	return &Handler{Service: service, Clock: clock}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/attendance/export", h.handleAttendanceExport)
	})
}

func (h *Handler) handleAttendanceExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if !user.IsAdmin() {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", requestID)
		return
	}

	startDate, endDate, err := shared.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date format, use YYYY-MM-DD", requestID)
		return
	}
	filter := attendance.ListFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     r.URL.Query().Get("status"),
	}

	now := h.Clock.Now()
	stamp := now.Format("2006-01-02")

	switch r.URL.Query().Get("format") {
	case "pdf":
		out, err := h.Service.AttendancePDF(r.Context(), filter, now)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to generate PDF report", requestID)
			return
		}
		serveFile(w, out, "application/pdf", fmt.Sprintf("attendance-%s.pdf", stamp))
	case "", "csv":
		out, err := h.Service.AttendanceCSV(r.Context(), filter)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to generate CSV report", requestID)
			return
		}
		serveFile(w, out, "text/csv", fmt.Sprintf("attendance-%s.csv", stamp))
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_format", "format must be csv or pdf", requestID)
	}
}

func serveFile(w http.ResponseWriter, body []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
