package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"attendly/internal/domain/attendance"
	"attendly/internal/domain/auth"
	"attendly/internal/domain/core"
	"attendly/internal/platform/metrics"
	"attendly/internal/transport/http/api"
	"attendly/internal/transport/http/middleware"
)

type Handler struct {
	Auth            *auth.Service
	Attendance      *attendance.Service
	Users           *core.Service
	Secret          string
	TokenTTL        time.Duration
	AllowSelfSignup bool
	Metrics         *metrics.Collector
}

func NewHandler(authSvc *auth.Service, attendanceSvc *attendance.Service, users *core.Service, secret string, tokenTTL time.Duration, allowSelfSignup bool, collector *metrics.Collector) *Handler {
	return &Handler{
		Auth:            authSvc,
		Attendance:      attendanceSvc,
		Users:           users,
		Secret:          secret,
		TokenTTL:        tokenTTL,
		AllowSelfSignup: allowSelfSignup,
		Metrics:         collector,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.handleLogin)
		r.With(loginLimiter).Post("/register", h.handleRegister)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Get("/verify", h.handleVerify)
	})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string              `json:"token"`
	User        userView            `json:"user"`
	Attendance  *attendance.Record  `json:"attendance,omitempty"`
	SessionInfo *attendance.Session `json:"sessionInfo,omitempty"`
}

type userView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

func viewOf(user auth.AuthUser) userView {
	return userView{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		Position:   user.Position,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "missing_credentials", "email and password are required", requestID)
		return
	}

	user, err := h.Auth.FindUserByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to process login", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}
	if !user.IsActive {
		api.Fail(w, http.StatusUnauthorized, "account_disabled", "account is deactivated", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Role: user.Role}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to issue token", requestID)
		return
	}

	resp := loginResponse{Token: token, User: viewOf(user)}

	// Attendance is tracked for employees only; admin logins skip it.
	if user.Role == auth.RoleEmployee {
		now := h.Attendance.Clock().Now()
		session, err := h.Attendance.ReconcileLogin(r.Context(), user.ID, now)
		if err != nil {
			slog.Warn("attendance reconcile on login failed", "err", err, "employee", user.ID)
		} else {
			resp.SessionInfo = &session
			h.Metrics.RecordLogin(session.IsContinuation)
			if record, err := h.Attendance.Today(r.Context(), user.ID, now); err == nil {
				resp.Attendance = record
			}
		}
	}

	api.Success(w, resp, requestID)
}

type registerPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if !h.AllowSelfSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self signup is disabled", requestID)
		return
	}

	var payload registerPayload
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

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", requestID)
		return
	}

	user, err := h.Users.CreateUser(r.Context(), payload.Name, payload.Email, hash, auth.RoleEmployee, payload.Department, payload.Position)
	if err != nil {
		if errors.Is(err, core.ErrEmailExists) {
			api.Fail(w, http.StatusConflict, "email_exists", "email is already registered", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", requestID)
		return
	}
	api.Created(w, user, requestID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	if user.Role == auth.RoleEmployee {
		now := h.Attendance.Clock().Now()
		if err := h.Attendance.ReconcileLogout(r.Context(), user.UserID, now); err != nil {
			api.Fail(w, http.StatusInternalServerError, "logout_failed", "failed to close attendance session", requestID)
			return
		}
		h.Metrics.RecordLogout()
	}
	api.Success(w, map[string]string{"message": "logged out"}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userCtx, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	user, err := h.Auth.FindUserByID(r.Context(), userCtx.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "me_failed", "failed to load profile", requestID)
		return
	}

	out := map[string]any{"user": viewOf(user)}
	if user.Role == auth.RoleEmployee {
		now := h.Attendance.Clock().Now()
		record, err := h.Attendance.Today(r.Context(), user.ID, now)
		if err != nil && !errors.Is(err, attendance.ErrNotFound) {
			api.Fail(w, http.StatusInternalServerError, "me_failed", "failed to load attendance", requestID)
			return
		}
		if record != nil {
			out["attendance"] = record
		}
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "token is invalid or expired", requestID)
		return
	}
	api.Success(w, map[string]any{"valid": true, "userId": user.UserID, "role": user.Role}, requestID)
}
