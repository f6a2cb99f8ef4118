package requests

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCategory = errors.New("invalid request category")
	ErrInvalidPriority = errors.New("invalid request priority")
	ErrInvalidStatus   = errors.New("invalid request status")
	ErrSubjectRequired = errors.New("subject and description are required")
	ErrTooLong         = errors.New("field exceeds maximum length")
)

var categories = map[string]bool{
	"attendance": true,
	"leave":      true,
	"general":    true,
	"technical":  true,
	"hr":         true,
	"other":      true,
}

var priorities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
	"urgent": true,
}

// NormalizeNew validates and defaults a freshly submitted request.
func NormalizeNew(req *Request) error {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Description = strings.TrimSpace(req.Description)
	if req.Subject == "" || req.Description == "" {
		return ErrSubjectRequired
	}
	if len(req.Subject) > maxSubjectLength || len(req.Description) > maxDescriptionLength {
		return ErrTooLong
	}

	if req.Category == "" {
		req.Category = "general"
	}
	if !categories[req.Category] {
		return ErrInvalidCategory
	}

	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !priorities[req.Priority] {
		return ErrInvalidPriority
	}

	req.Status = StatusPending
	return nil
}

// ApplyStatusUpdate mutates the request for an admin status change.
// Resolution timestamps are stamped only for terminal states.
func ApplyStatusUpdate(req *Request, status, adminResponse, adminID string, now time.Time) error {
	switch status {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
	default:
		return ErrInvalidStatus
	}

	response := strings.TrimSpace(adminResponse)
	if len(response) > maxResponseLength {
		return ErrTooLong
	}

	req.Status = status
	if response != "" {
		req.AdminResponse = response
	}
	if adminID != "" {
		req.ResolvedBy = adminID
	}
	if status == StatusResolved || status == StatusRejected {
		stamp := now
		req.ResolvedAt = &stamp
	}
	return nil
}
