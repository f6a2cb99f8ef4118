package attendance

import "time"

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusHalfDay = "half-day"
)

type Record struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	EmployeeName  string     `json:"employeeName,omitempty"`
	EmployeeEmail string     `json:"employeeEmail,omitempty"`
	Date          time.Time  `json:"date"`
	ClockIn       time.Time  `json:"clockIn"`
	ClockOut      *time.Time `json:"clockOut"`
	TotalHours    float64    `json:"totalHours"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
	IsManualEntry bool       `json:"isManualEntry"`
	EditedBy      string     `json:"editedBy,omitempty"`
	EditedByName  string     `json:"editedByName,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsLoggedIn reports whether the record holds a session that is still open.
func (r *Record) IsLoggedIn() bool {
	return !r.ClockIn.IsZero() && r.ClockOut == nil
}

// Session describes the outcome of a login reconciliation.
type Session struct {
	ClockIn          time.Time  `json:"clockIn"`
	ClockOut         *time.Time `json:"clockOut"`
	IsLoggedIn       bool       `json:"isLoggedIn"`
	SessionStartTime time.Time  `json:"sessionStartTime"`
	IsContinuation   bool       `json:"isContinuation"`
}

type ListFilter struct {
	EmployeeID string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     string
	Search     string
	Limit      int
	Offset     int
}

type Stats struct {
	TotalRecords   int `json:"totalRecords"`
	PresentRecords int `json:"presentRecords"`
	AbsentRecords  int `json:"absentRecords"`
	LateRecords    int `json:"lateRecords"`
	HalfDayRecords int `json:"halfDayRecords"`
	TotalEmployees int `json:"totalEmployees"`
	AttendanceRate int `json:"attendanceRate"`
}

type EmployeeSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type DaySummary struct {
	ClockIn    *time.Time `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut"`
	TotalHours float64    `json:"totalHours"`
	Status     string     `json:"status"`
	IsLoggedIn bool       `json:"isLoggedIn"`
}

// OverviewEntry pairs an active employee with their record for the day,
// absent employees included with a zeroed summary.
type OverviewEntry struct {
	Employee   EmployeeSummary `json:"employee"`
	Attendance DaySummary      `json:"attendance"`
}
