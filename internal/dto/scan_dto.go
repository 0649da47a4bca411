package dto

// Validation failure reasons returned to the scanner client.
const (
	ScanReasonInvalidFormat = "InvalidFormat"
	ScanReasonNotFound      = "NotFound"
	ScanReasonAlreadyUsed   = "AlreadyUsed"
)

// ScanRequest carries the raw text decoded from a QR image by the scanner.
type ScanRequest struct {
	QRData string `json:"qr_data" validate:"required"`
}

// ScanResult is the structured validation outcome. Invalid scans carry a
// machine-readable reason alongside the user-facing message; a fault never
// escapes the validator as an unstructured error.
type ScanResult struct {
	Valid   bool        `json:"valid"`
	Message string      `json:"message"`
	Reason  string      `json:"reason,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// EventInfoData is returned for read-only event_info scans.
type EventInfoData struct {
	EventTitle string `json:"eventTitle"`
	EventDate  string `json:"eventDate"`
	EventTime  string `json:"eventTime"`
	Venue      string `json:"venue"`
	Organizer  string `json:"organizer"`
}

// PassScanData is returned on a successful pass redemption.
type PassScanData struct {
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
	EventTitle   string `json:"eventTitle"`
	EventDate    string `json:"eventDate"`
	EventTime    string `json:"eventTime"`
	Venue        string `json:"venue"`
}
