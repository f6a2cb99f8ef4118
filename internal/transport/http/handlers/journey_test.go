package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"attendly/internal/app/server"
	"attendly/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func TestAttendanceJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		Timezone:           "UTC",
		SeedAdminName:      "Test Admin",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		MigrationsDir:      "../../../../migrations",
		RunSeed:            true,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword, nil)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	createEmployee(t, client, ts.URL, adminToken, employeeEmail)

	// First login of the day opens a session.
	var loginData struct {
		Attendance *struct {
			ID       string  `json:"id"`
			ClockOut *string `json:"clockOut"`
		} `json:"attendance"`
		SessionInfo *struct {
			IsLoggedIn     bool `json:"isLoggedIn"`
			IsContinuation bool `json:"isContinuation"`
		} `json:"sessionInfo"`
	}
	employeeToken := login(t, client, ts.URL, employeeEmail, "Secret123!", &loginData)
	if loginData.SessionInfo == nil || !loginData.SessionInfo.IsLoggedIn {
		t.Fatalf("expected an open session after first login, got %+v", loginData.SessionInfo)
	}
	if loginData.SessionInfo.IsContinuation {
		t.Fatal("first login of the day must not be a continuation")
	}
	if loginData.Attendance == nil || loginData.Attendance.ClockOut != nil {
		t.Fatalf("expected open attendance record, got %+v", loginData.Attendance)
	}

	// Logout closes it.
	doRequest(t, client, http.MethodPost, ts.URL+"/api/v1/auth/logout", employeeToken, nil, http.StatusOK)

	var today struct {
		ClockOut *string `json:"clockOut"`
	}
	decodeInto(t, doRequest(t, client, http.MethodGet, ts.URL+"/api/v1/attendance/today", employeeToken, nil, http.StatusOK), &today)
	if today.ClockOut == nil {
		t.Fatal("expected clockOut set after logout")
	}

	// Re-login within the reopen window continues the same day.
	employeeToken = login(t, client, ts.URL, employeeEmail, "Secret123!", &loginData)
	if loginData.SessionInfo == nil || !loginData.SessionInfo.IsContinuation {
		t.Fatalf("expected continuation on immediate re-login, got %+v", loginData.SessionInfo)
	}

	// Ticketing round trip.
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeInto(t, doRequest(t, client, http.MethodPost, ts.URL+"/api/v1/requests", employeeToken, map[string]any{
		"subject":     "Badge not working",
		"description": "My badge stopped opening the office door.",
		"category":    "technical",
	}, http.StatusCreated), &created)
	if created.Status != "pending" {
		t.Fatalf("expected new request pending, got %q", created.Status)
	}

	var resolved struct {
		Status     string  `json:"status"`
		ResolvedAt *string `json:"resolvedAt"`
	}
	decodeInto(t, doRequest(t, client, http.MethodPut, ts.URL+"/api/v1/requests/"+created.ID+"/status", adminToken, map[string]any{
		"status":        "resolved",
		"adminResponse": "Badge reissued.",
	}, http.StatusOK), &resolved)
	if resolved.Status != "resolved" || resolved.ResolvedAt == nil {
		t.Fatalf("expected resolved with timestamp, got %+v", resolved)
	}

	// Admin export.
	resp, err := client.Get(ts.URL + "/api/v1/reports/attendance/export?format=csv")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	body := doRequest(t, client, http.MethodGet, ts.URL+"/api/v1/reports/attendance/export?format=csv", adminToken, nil, http.StatusOK)
	if !bytes.Contains(body, []byte("date,employee")) {
		t.Fatalf("expected CSV header in export, got %q", string(body[:min(len(body), 80)]))
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string, out any) string {
	t.Helper()
	body := doRequest(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)

	var data struct {
		Token string `json:"token"`
	}
	decodeInto(t, body, &data)
	if data.Token == "" {
		t.Fatalf("login for %s returned no token", email)
	}
	if out != nil {
		decodeInto(t, body, out)
	}
	return data.Token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, adminToken, email string) {
	t.Helper()
	doRequest(t, client, http.MethodPost, baseURL+"/api/v1/users", adminToken, map[string]any{
		"name":       "Journey Employee",
		"email":      email,
		"password":   "Secret123!",
		"role":       "employee",
		"department": "QA",
	}, http.StatusCreated)
}

// doRequest performs the call, asserts the status, and returns the body.
func doRequest(t *testing.T, client *http.Client, method, url, token string, payload any, wantStatus int) []byte {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, wantStatus, resp.StatusCode, string(raw))
	}
	return raw
}

func decodeInto(t *testing.T, body []byte, out any) {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, string(body))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, string(env.Data))
	}
}
