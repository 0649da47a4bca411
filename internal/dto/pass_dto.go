package dto

import (
	"time"

	"github.com/campuspass/campuspass-api/internal/models"
)

// PassIssueRequest is the batch issuance body.
type PassIssueRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required,min=1,dive,gt=0"`
}

// PassResponse is the public representation of an event pass.
type PassResponse struct {
	PassID       string     `json:"pass_id"`
	EventID      string     `json:"event_id"`
	StudentID    uint       `json:"student_id"`
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"student_email"`
	QRData       string     `json:"qr_data"`
	IsUsed       bool       `json:"is_used"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	ScannedBy    *uint      `json:"scanned_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PassIssueResponse aggregates batch issuance outcomes. Errors holds one
// entry per student that could not be served; it never aborts the batch.
type PassIssueResponse struct {
	Issued []PassResponse `json:"issued"`
	Errors []string       `json:"errors"`
}

// NewPassResponse maps a pass model (with preloaded student) to its
// response form. The event identifier is the public eventId string.
func NewPassResponse(pass models.Pass, eventID string) PassResponse {
	return PassResponse{
		PassID:       pass.PassID,
		EventID:      eventID,
		StudentID:    pass.StudentID,
		StudentName:  pass.Student.Name,
		StudentEmail: pass.Student.Email,
		QRData:       string(pass.QRData),
		IsUsed:       pass.IsUsed,
		UsedAt:       pass.UsedAt,
		ScannedBy:    pass.ScannedBy,
		CreatedAt:    pass.CreatedAt,
	}
}

// NewPassResponseSlice maps a slice of pass models.
func NewPassResponseSlice(passes []models.Pass, eventID string) []PassResponse {
	responses := make([]PassResponse, 0, len(passes))
	for _, pass := range passes {
		responses = append(responses, NewPassResponse(pass, eventID))
	}
	return responses
}
