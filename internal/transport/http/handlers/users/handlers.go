package usershandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"attendly/internal/domain/auth"
	"attendly/internal/domain/core"
	"attendly/internal/transport/http/api"
	"attendly/internal/transport/http/middleware"
	"attendly/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
}

func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{userID}", h.handleGet)
		r.Put("/{userID}", h.handleUpdate)
		r.Delete("/{userID}", h.handleDeactivate)
	})
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return auth.UserContext{}, false
	}
	if !user.IsAdmin() {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", requestID)
		return auth.UserContext{}, false
	}
	return user, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter := core.UserFilter{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	userList, total, err := h.Service.ListUsers(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_list_failed", "failed to list users", requestID)
		return
	}
	api.Success(w, map[string]any{"users": userList, "total": total}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	userID := chi.URLParam(r, "userID")
	// Employees may read their own profile; everything else is admin only.
	if !user.IsAdmin() && user.UserID != userID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another user", requestID)
		return
	}

	found, err := h.Service.GetUser(r.Context(), userID)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_get_failed", "failed to load user", requestID)
		return
	}
	api.Success(w, found, requestID)
}

type createUserPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var payload createUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Name == "" || payload.Email == "" {
		api.Fail(w, http.StatusBadRequest, "missing_fields", "name and email are required", requestID)
		return
	}
	if len(payload.Password) < 6 {
		api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 6 characters", requestID)
		return
	}
	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	if payload.Role != auth.RoleAdmin && payload.Role != auth.RoleEmployee {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "role must be admin or employee", requestID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", requestID)
		return
	}

	created, err := h.Service.CreateUser(r.Context(), payload.Name, payload.Email, hash, payload.Role, payload.Department, payload.Position)
	if err != nil {
		if errors.Is(err, core.ErrEmailExists) {
			api.Fail(w, http.StatusConflict, "email_exists", "email is already registered", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", requestID)
		return
	}
	api.Created(w, created, requestID)
}

type updateUserPayload struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	IsActive   *bool   `json:"isActive"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var payload updateUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	update := core.UserUpdate{
		Name:       payload.Name,
		Email:      payload.Email,
		Department: payload.Department,
		Position:   payload.Position,
		IsActive:   payload.IsActive,
	}

	updated, err := h.Service.UpdateUser(r.Context(), chi.URLParam(r, "userID"), update)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		case errors.Is(err, core.ErrEmailExists):
			api.Fail(w, http.StatusConflict, "email_exists", "email is already registered", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", requestID)
		}
		return
	}
	api.Success(w, updated, requestID)
}

// handleDeactivate soft-deletes by flipping is_active; attendance history
// stays intact.
func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	admin, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")
	if userID == admin.UserID {
		api.Fail(w, http.StatusBadRequest, "self_deactivate", "cannot deactivate your own account", requestID)
		return
	}

	inactive := false
	updated, err := h.Service.UpdateUser(r.Context(), userID, core.UserUpdate{IsActive: &inactive})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_deactivate_failed", "failed to deactivate user", requestID)
		return
	}
	api.Success(w, updated, requestID)
}
