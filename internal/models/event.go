package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event status values. Status is the only mutable attribute after creation.
const (
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Event represents an organizer-created activity carrying an embedded
// event_info QR payload.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     string         `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Date        string         `gorm:"size:10;not null" json:"date"`
	Time        string         `gorm:"size:8;not null" json:"time"`
	Venue       string         `gorm:"size:255;not null" json:"venue"`
	Organizer   string         `gorm:"size:255;not null" json:"organizer"`
	QRData      datatypes.JSON `gorm:"not null" json:"qr_data"`
	Status      string         `gorm:"size:16;not null;default:active" json:"status"`
	CreatedBy   uint           `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ValidEventStatus reports whether s is one of the allowed status values.
func ValidEventStatus(s string) bool {
	switch s {
	case EventStatusActive, EventStatusCompleted, EventStatusCancelled:
		return true
	default:
		return false
	}
}
