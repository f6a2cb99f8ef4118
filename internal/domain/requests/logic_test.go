package requests

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeNewDefaults(t *testing.T) {
	req := Request{Subject: "  Broken badge  ", Description: "Reader will not scan my badge."}
	if err := NormalizeNew(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Subject != "Broken badge" {
		t.Fatalf("expected trimmed subject, got %q", req.Subject)
	}
	if req.Category != "general" || req.Priority != "medium" {
		t.Fatalf("expected defaults, got category=%q priority=%q", req.Category, req.Priority)
	}
	if req.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", req.Status)
	}
}

func TestNormalizeNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "missing subject",
			req:     Request{Description: "something"},
			wantErr: ErrSubjectRequired,
		},
		{
			name:    "missing description",
			req:     Request{Subject: "something"},
			wantErr: ErrSubjectRequired,
		},
		{
			name:    "subject too long",
			req:     Request{Subject: strings.Repeat("x", 201), Description: "d"},
			wantErr: ErrTooLong,
		},
		{
			name:    "unknown category",
			req:     Request{Subject: "s", Description: "d", Category: "payroll"},
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "unknown priority",
			req:     Request{Subject: "s", Description: "d", Priority: "asap"},
			wantErr: ErrInvalidPriority,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := NormalizeNew(&tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplyStatusUpdate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	req := Request{Status: StatusPending}
	if err := ApplyStatusUpdate(&req, StatusInProgress, "", "admin-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ResolvedAt != nil {
		t.Fatal("in_progress must not stamp resolvedAt")
	}

	if err := ApplyStatusUpdate(&req, StatusResolved, "Replaced the badge.", "admin-1", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ResolvedAt == nil || !req.ResolvedAt.Equal(now) {
		t.Fatalf("expected resolvedAt %v, got %v", now, req.ResolvedAt)
	}
	if req.AdminResponse != "Replaced the badge." || req.ResolvedBy != "admin-1" {
		t.Fatalf("unexpected resolution fields: %+v", req)
	}
}

func TestApplyStatusUpdateRejectsUnknownStatus(t *testing.T) {
	req := Request{Status: StatusPending}
	err := ApplyStatusUpdate(&req, "closed", "", "admin-1", time.Now())
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("request must be untouched on error, got status %q", req.Status)
	}
}
