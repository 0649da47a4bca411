package models

import (
	"time"

	"gorm.io/datatypes"
)

// Pass is a single-use credential binding one student to one event. The
// composite unique index enforces at most one pass per (event, student)
// pair; IsUsed only ever transitions false to true.
type Pass struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PassID    string         `gorm:"size:64;uniqueIndex;not null" json:"pass_id"`
	EventID   uint           `gorm:"not null;uniqueIndex:idx_passes_event_student" json:"event_id"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_passes_event_student" json:"student_id"`
	QRData    datatypes.JSON `gorm:"not null" json:"qr_data"`
	IsUsed    bool           `gorm:"not null;default:false" json:"is_used"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	ScannedBy *uint          `json:"scanned_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}
