// Package ledger owns the flat-file attendance record store. Rows are
// comma-delimited text, one record per line:
//
//	studentId,name,date,time,subject,status
//
// An optional first line containing the literal token "student_id" is a
// header. The file is the shared state between the external capture flow
// and staff corrections, so all access goes through a single Store that
// serialises writers and swaps rewrites in atomically.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Attendance status values accepted by the ledger.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

const (
	headerToken = "student_id"
	headerLine  = "student_id,name,date,time,subject,status"
	fieldCount  = 6
)

// ErrRecordNotFound indicates no row matched the (studentId, date, time) key.
var ErrRecordNotFound = errors.New("attendance record not found")

// ErrInvalidField indicates a field value that would break the row format.
// The ledger is an unquoted comma-join, so commas and line breaks inside a
// field cannot survive a round trip.
var ErrInvalidField = errors.New("field contains a reserved delimiter")

var displayIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Record is one parsed ledger row. RecordID is a synthesized display
// identifier of the form studentId_date_HH-MM-SS.
type Record struct {
	RecordID  string `json:"_id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
}

// DisplayID derives the composite display identifier for a row key. Colons
// in the time become hyphens and the result is restricted to a safe
// character set.
func DisplayID(studentID, date, timeOfDay string) string {
	raw := studentID + "_" + date + "_" + strings.ReplaceAll(timeOfDay, ":", "-")
	return displayIDSanitizer.ReplaceAllString(raw, "_")
}

// ValidStatus reports whether s is an accepted attendance status.
func ValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}

// Store provides serialised access to one attendance ledger file. Writers
// hold the write lock for the full read-modify-write cycle; readers may
// proceed concurrently with each other.
type Store struct {
	path   string
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewStore builds a ledger store over the file at path. The file does not
// need to exist yet; a missing ledger reads as empty.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With().Str("component", "attendance_ledger").Logger(),
	}
}

// Append adds one record to the end of the ledger, creating the file with a
// header when it does not exist yet. Fields holding a comma or line break
// are rejected with ErrInvalidField. Duplicate (studentId, date, time) keys
// are a caller-level policy; the store does not reject them here.
func (s *Store) Append(record Record) error {
	for _, field := range []string{
		record.StudentID,
		record.Name,
		record.Date,
		record.Time,
		record.Subject,
		record.Status,
	} {
		if strings.ContainsAny(field, ",\n\r") {
			return fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return err
	}

	if len(lines) == 0 {
		lines = append(lines, headerLine)
	}

	row := strings.Join([]string{
		record.StudentID,
		record.Name,
		record.Date,
		record.Time,
		record.Subject,
		record.Status,
	}, ",")
	lines = append(lines, row)

	if err := s.writeAtomic(lines); err != nil {
		return err
	}

	s.logger.Info().
		Str("student_id", record.StudentID).
		Str("date", record.Date).
		Str("time", record.Time).
		Msg("attendance record appended")

	return nil
}

// UpdateStatus rewrites the status field of the row matching the composite
// (studentID, date, time) key and swaps the full ledger contents back in
// atomically. Returns ErrRecordNotFound when no row matches.
func (s *Store) UpdateStatus(studentID, date, timeOfDay, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return err
	}

	updated := false
	for i, line := range lines {
		if i == 0 && isHeader(line) {
			continue
		}
		fields := splitRow(line)
		if fields == nil {
			continue
		}
		if fields[0] == studentID && fields[2] == date && fields[3] == timeOfDay {
			fields[5] = status
			lines[i] = strings.Join(fields, ",")
			updated = true
			break
		}
	}

	if !updated {
		return ErrRecordNotFound
	}

	if err := s.writeAtomic(lines); err != nil {
		return err
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("date", date).
		Str("time", timeOfDay).
		Str("status", status).
		Msg("attendance status updated")

	return nil
}

// List parses all rows, filtered to one date when dateFilter is non-empty.
func (s *Store) List(dateFilter string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(lines))
	for i, line := range lines {
		if i == 0 && isHeader(line) {
			continue
		}
		record, ok := parseRow(line)
		if !ok {
			continue
		}
		if dateFilter != "" && record.Date != dateFilter {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// ListAll parses every row with no filter.
func (s *Store) ListAll() ([]Record, error) {
	return s.List("")
}

// Find returns the row matching the composite key, if one exists.
func (s *Store) Find(studentID, date, timeOfDay string) (Record, bool, error) {
	records, err := s.List(date)
	if err != nil {
		return Record{}, false, err
	}

	for _, record := range records {
		if record.StudentID == studentID && record.Time == timeOfDay {
			return record, true, nil
		}
	}

	return Record{}, false, nil
}

// readLines loads the ledger as raw lines, dropping blank lines and the
// header. A missing file is an empty ledger, not an error.
func (s *Store) readLines() ([]string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read attendance ledger: %w", err)
	}

	raw := strings.Split(string(content), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// writeAtomic writes the full ledger to a temporary file in the same
// directory and renames it over the target, so readers never observe a
// truncated ledger.
func (s *Store) writeAtomic(lines []string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to prepare ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".attendance-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create ledger temp file: %w", err)
	}

	content := strings.Join(lines, "\n") + "\n"
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write ledger temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close ledger temp file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set ledger permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to swap ledger file: %w", err)
	}

	return nil
}

// isHeader reports whether the first ledger line is a header row.
func isHeader(line string) bool {
	return strings.Contains(line, headerToken)
}

// splitRow returns the trimmed fields of a data row, or nil for rows with
// fewer than six fields.
func splitRow(line string) []string {
	fields := strings.Split(line, ",")
	if len(fields) < fieldCount {
		return nil
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}

func parseRow(line string) (Record, bool) {
	fields := splitRow(line)
	if fields == nil {
		return Record{}, false
	}

	record := Record{
		StudentID: fields[0],
		Name:      fields[1],
		Date:      fields[2],
		Time:      fields[3],
		Subject:   fields[4],
		Status:    fields[5],
	}
	record.RecordID = DisplayID(record.StudentID, record.Date, record.Time)

	return record, true
}
