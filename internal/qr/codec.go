// Package qr implements the payload codec for QR codes issued by the
// service. A payload is a tagged JSON union with exactly two variants:
// an event summary and a single-use event pass.
package qr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Recognised payload type tags.
const (
	TypeEventInfo = "event_info"
	TypeEventPass = "event_pass"
)

var (
	// ErrMalformedPayload indicates the raw text is not valid JSON.
	ErrMalformedPayload = errors.New("malformed qr payload")
	// ErrUnknownPayloadType indicates the type tag is missing or not recognised.
	ErrUnknownPayloadType = errors.New("unknown qr payload type")
)

// EventInfo is the read-only event summary variant.
type EventInfo struct {
	Type    string `json:"type"`
	EventID string `json:"eventId"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// EventPass is the single-use credential variant binding a student to an event.
type EventPass struct {
	Type        string `json:"type"`
	EventID     string `json:"eventId"`
	PassID      string `json:"passId"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
}

// Payload is the decoded union. Exactly one field is non-nil.
type Payload struct {
	Info *EventInfo
	Pass *EventPass
}

// EncodeEventInfo serialises an event summary payload.
func EncodeEventInfo(eventID, title, date, timeOfDay string) (string, error) {
	return encode(EventInfo{
		Type:    TypeEventInfo,
		EventID: eventID,
		Title:   title,
		Date:    date,
		Time:    timeOfDay,
	})
}

// EncodeEventPass serialises a pass payload.
func EncodeEventPass(eventID, passID, studentID, studentName string) (string, error) {
	return encode(EventPass{
		Type:        TypeEventPass,
		EventID:     eventID,
		PassID:      passID,
		StudentID:   studentID,
		StudentName: studentName,
	})
}

func encode(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr payload: %w", err)
	}
	return string(data), nil
}

// Decode parses raw QR text into one of the two recognised variants. It
// never panics: invalid JSON yields ErrMalformedPayload and an absent,
// non-string or unrecognised type tag yields ErrUnknownPayloadType.
func Decode(raw string) (Payload, error) {
	var envelope struct {
		Type interface{} `json:"type"`
	}

	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return Payload{}, ErrMalformedPayload
	}

	tag, ok := envelope.Type.(string)
	if !ok {
		if envelope.Type == nil {
			return Payload{}, fmt.Errorf("%w: missing type tag", ErrUnknownPayloadType)
		}
		return Payload{}, fmt.Errorf("%w: %v", ErrUnknownPayloadType, envelope.Type)
	}

	switch tag {
	case TypeEventInfo:
		var info EventInfo
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			return Payload{}, ErrMalformedPayload
		}
		return Payload{Info: &info}, nil
	case TypeEventPass:
		var pass EventPass
		if err := json.Unmarshal([]byte(raw), &pass); err != nil {
			return Payload{}, ErrMalformedPayload
		}
		return Payload{Pass: &pass}, nil
	default:
		if strings.TrimSpace(tag) == "" {
			return Payload{}, fmt.Errorf("%w: missing type tag", ErrUnknownPayloadType)
		}
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownPayloadType, tag)
	}
}
