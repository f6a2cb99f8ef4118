package requestshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attendly/internal/domain/requests"
	"attendly/internal/transport/http/api"
	"attendly/internal/transport/http/middleware"
	"attendly/internal/transport/http/shared"
)

type Handler struct {
	Service *requests.Service
}

func NewHandler(service *requests.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/my", h.handleListMine)
		r.Get("/stats", h.handleStats)
		r.Get("/", h.handleList)
		r.Get("/{requestID}", h.handleGet)
		r.Put("/{requestID}/status", h.handleUpdateStatus)
	})
}

type createPayload struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	created, err := h.Service.Create(r.Context(), requests.Request{
		EmployeeID:  user.UserID,
		Subject:     payload.Subject,
		Description: payload.Description,
		Category:    payload.Category,
		Priority:    payload.Priority,
	})
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "request_create_failed", err.Error(), requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	filter := filterFromQuery(r)
	filter.EmployeeID = user.UserID

	list, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_list_failed", "failed to list requests", requestID)
		return
	}
	api.Success(w, map[string]any{"requests": list, "total": total}, requestID)
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

	filter := filterFromQuery(r)
	filter.EmployeeID = r.URL.Query().Get("employeeId")

	list, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_list_failed", "failed to list requests", requestID)
		return
	}
	api.Success(w, map[string]any{"requests": list, "total": total}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if errors.Is(err, requests.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "request_get_failed", "failed to load request", requestID)
		return
	}
	if !user.IsAdmin() && found.EmployeeID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's request", requestID)
		return
	}
	api.Success(w, found, requestID)
}

type statusPayload struct {
	Status        string `json:"status"`
	AdminResponse string `json:"adminResponse"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "requestID"), payload.Status, payload.AdminResponse, user.UserID, time.Now())
	if err != nil {
		if errors.Is(err, requests.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "request not found", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "request_update_failed", err.Error(), requestID)
		return
	}
	api.Success(w, updated, requestID)
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

	counts, err := h.Service.CountByStatus(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_stats_failed", "failed to load request stats", requestID)
		return
	}
	api.Success(w, counts, requestID)
}

func filterFromQuery(r *http.Request) requests.ListFilter {
	page := shared.ParsePagination(r, 30, 100)
	return requests.ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Priority: r.URL.Query().Get("priority"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
}
