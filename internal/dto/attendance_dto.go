package dto

import "time"

// AttendanceCreateRequest is one captured attendance row. The capture flow
// is expected to avoid duplicate (student, date, time) keys; the service
// rejects them before they reach the ledger. Free-text fields must not
// carry the ledger's row delimiters (comma, CR, LF: 0x2C 0x0D 0x0A).
type AttendanceCreateRequest struct {
	StudentID string `json:"student_id" validate:"required,max=64,excludesall=0x2C0x0A0x0D"`
	Name      string `json:"name" validate:"required,max=255,excludesall=0x2C0x0A0x0D"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04:05"`
	Subject   string `json:"subject" validate:"required,max=128,excludesall=0x2C0x0A0x0D"`
	Status    string `json:"status" validate:"required,oneof=Present Absent"`
}

// AttendanceStatusUpdateRequest mutates one ledger row's status. RecordID
// uses the composite display form studentId_date_HH-MM-SS.
type AttendanceStatusUpdateRequest struct {
	RecordID string `json:"record_id" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=Present Absent"`
}

// AttendanceUpdateResponse echoes the applied mutation.
type AttendanceUpdateResponse struct {
	RecordID  string    `json:"record_id"`
	StudentID string    `json:"student_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusBreakdown is one aggregation bucket. Percentages are formatted
// with one decimal place and are "0.0" when the bucket is empty.
type StatusBreakdown struct {
	Total             int    `json:"total"`
	Present           int    `json:"present"`
	Absent            int    `json:"absent"`
	PresentPercentage string `json:"presentPercentage"`
	AbsentPercentage  string `json:"absentPercentage"`
}

// StatisticsResponse is the aggregate view over the attendance ledger.
type StatisticsResponse struct {
	StatusBreakdown
	BySubject map[string]StatusBreakdown `json:"bySubject"`
	ByDate    map[string]StatusBreakdown `json:"byDate"`
}

// StatisticsFilters echoes the filters applied to an aggregation.
type StatisticsFilters struct {
	Date    string `json:"date,omitempty"`
	Subject string `json:"subject,omitempty"`
}
