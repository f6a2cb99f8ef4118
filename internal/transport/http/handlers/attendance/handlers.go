package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attendly/internal/domain/attendance"
	"attendly/internal/transport/http/api"
	"attendly/internal/transport/http/middleware"
	"attendly/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Get("/my", h.handleListMine)
		r.Get("/today", h.handleToday)
		r.Get("/today-overview", h.handleTodayOverview)
		r.Get("/active-sessions", h.handleActiveSessions)
		r.Get("/stats/overview", h.handleStats)
		r.Get("/", h.handleList)
		r.Post("/manual", h.handleCreateManual)
		r.Get("/{recordID}", h.handleGet)
		r.Put("/{recordID}", h.handleUpdate)
	})
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	filter, err := listFilterFromQuery(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date format, use YYYY-MM-DD", requestID)
		return
	}

	records, total, err := h.Service.ListForEmployee(r.Context(), user.UserID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", requestID)
		return
	}
	api.Success(w, map[string]any{"records": records, "total": total}, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	record, err := h.Service.Today(r.Context(), user.UserID, h.Service.Clock().Now())
	if errors.Is(err, attendance.ErrNotFound) {
		api.Success(w, nil, requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_today_failed", "failed to load today's attendance", requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
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

	filter, err := listFilterFromQuery(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date format, use YYYY-MM-DD", requestID)
		return
	}
	filter.EmployeeID = r.URL.Query().Get("employeeId")
	filter.Search = r.URL.Query().Get("search")

	records, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", requestID)
		return
	}
	api.Success(w, map[string]any{"records": records, "total": total}, requestID)
}

func (h *Handler) handleTodayOverview(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.Service.TodayOverview(r.Context(), h.Service.Clock().Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overview_failed", "failed to load today's overview", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.Service.ActiveSessions(r.Context(), h.Service.Clock().Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "active_sessions_failed", "failed to load active sessions", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.Service.Stats(r.Context(), startDate, endDate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to compute attendance stats", requestID)
		return
	}
	api.Success(w, stats, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	record, err := h.Service.Get(r.Context(), chi.URLParam(r, "recordID"))
	if errors.Is(err, attendance.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_get_failed", "failed to load attendance record", requestID)
		return
	}
	// Employees can only read their own records.
	if !user.IsAdmin() && record.EmployeeID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's record", requestID)
		return
	}
	api.Success(w, record, requestID)
}

type manualEntryPayload struct {
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	ClockIn    string  `json:"clockIn"`
	ClockOut   *string `json:"clockOut"`
	Status     string  `json:"status"`
	Notes      string  `json:"notes"`
}

func (h *Handler) handleCreateManual(w http.ResponseWriter, r *http.Request) {
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

	var payload manualEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.EmployeeID == "" || payload.Date == "" || payload.ClockIn == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "employeeId, date and clockIn are required", requestID)
		return
	}

	date, err := shared.ParseDate(payload.Date)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid date format, use YYYY-MM-DD", requestID)
		return
	}
	clockIn, err := shared.ParseDate(payload.ClockIn)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid clockIn, use RFC3339", requestID)
		return
	}

	rec := attendance.Record{
		EmployeeID: payload.EmployeeID,
		Date:       date,
		ClockIn:    clockIn,
		Status:     payload.Status,
		Notes:      payload.Notes,
	}
	if payload.ClockOut != nil && *payload.ClockOut != "" {
		clockOut, err := shared.ParseDate(*payload.ClockOut)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid clockOut, use RFC3339", requestID)
			return
		}
		rec.ClockOut = &clockOut
	}

	created, err := h.Service.CreateManual(r.Context(), rec, user.UserID)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrClockOutBeforeClockIn):
			api.Fail(w, http.StatusBadRequest, "invalid_session", "clockOut must not precede clockIn", requestID)
		case errors.Is(err, attendance.ErrDuplicateDay):
			api.Fail(w, http.StatusConflict, "duplicate_day", "attendance already recorded for this employee and date", requestID)
		default:
			api.Fail(w, http.StatusBadRequest, "attendance_create_failed", err.Error(), requestID)
		}
		return
	}
	api.Created(w, created, requestID)
}

type updateEntryPayload struct {
	ClockIn  *string `json:"clockIn"`
	ClockOut *string `json:"clockOut"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var payload updateEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	var clockIn, clockOut *time.Time
	if payload.ClockIn != nil {
		parsed, err := shared.ParseDate(*payload.ClockIn)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid clockIn, use RFC3339", requestID)
			return
		}
		clockIn = &parsed
	}
	if payload.ClockOut != nil {
		parsed, err := shared.ParseDate(*payload.ClockOut)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "invalid clockOut, use RFC3339", requestID)
			return
		}
		clockOut = &parsed
	}

	updated, err := h.Service.UpdateManual(r.Context(), chi.URLParam(r, "recordID"), clockIn, clockOut, payload.Status, payload.Notes, user.UserID)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", requestID)
		case errors.Is(err, attendance.ErrClockOutBeforeClockIn):
			api.Fail(w, http.StatusBadRequest, "invalid_session", "clockOut must not precede clockIn", requestID)
		default:
			api.Fail(w, http.StatusBadRequest, "attendance_update_failed", err.Error(), requestID)
		}
		return
	}
	api.Success(w, updated, requestID)
}

func listFilterFromQuery(r *http.Request) (attendance.ListFilter, error) {
	startDate, endDate, err := shared.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		return attendance.ListFilter{}, err
	}
	page := shared.ParsePagination(r, 30, 100)
	return attendance.ListFilter{
		StartDate: startDate,
		EndDate:   endDate,
		Status:    r.URL.Query().Get("status"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}, nil
}
