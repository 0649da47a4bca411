package dto

import (
	"time"

	"github.com/campuspass/campuspass-api/internal/models"
)

// EventCreateRequest carries the organizer's event details.
type EventCreateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04:05"`
	Venue       string `json:"venue" validate:"required,max=255"`
	Organizer   string `json:"organizer" validate:"required,max=255"`
}

// EventStatusUpdateRequest carries the only permitted event mutation.
type EventStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed cancelled"`
}

// EventResponse is the public representation of an event, including the
// embedded event_info QR payload text.
type EventResponse struct {
	ID          uint      `json:"id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Venue       string    `json:"venue"`
	Organizer   string    `json:"organizer"`
	QRData      string    `json:"qr_data"`
	Status      string    `json:"status"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEventResponse maps an event model to its response form.
func NewEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		EventID:     event.EventID,
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		Time:        event.Time,
		Venue:       event.Venue,
		Organizer:   event.Organizer,
		QRData:      string(event.QRData),
		Status:      event.Status,
		CreatedBy:   event.CreatedBy,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

// NewEventResponseSlice maps a slice of event models.
func NewEventResponseSlice(events []models.Event) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, NewEventResponse(event))
	}
	return responses
}
