package requests

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

const (
	maxSubjectLength     = 200
	maxDescriptionLength = 1000
	maxResponseLength    = 1000
)

type Request struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	EmployeeEmail  string     `json:"employeeEmail,omitempty"`
	Subject        string     `json:"subject"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	AdminResponse  string     `json:"adminResponse,omitempty"`
	ResolvedBy     string     `json:"resolvedBy,omitempty"`
	ResolvedByName string     `json:"resolvedByName,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
	Category   string
	Priority   string
	Limit      int
	Offset     int
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
