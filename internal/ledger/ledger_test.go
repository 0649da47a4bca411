package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendance.csv")
	return NewStore(path, zerolog.Nop())
}

func sampleRecord(studentID, timeOfDay string) Record {
	return Record{
		StudentID: studentID,
		Name:      "Ada Lovelace",
		Date:      "2025-01-01",
		Time:      timeOfDay,
		Subject:   "Mathematics",
		Status:    StatusPresent,
	}
}

func TestStoreMissingFileReadsEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestStoreAppendCreatesHeader(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(sampleRecord("S1", "09:00:00")))

	content, err := os.ReadFile(store.path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, headerLine, lines[0])
	require.Equal(t, "S1,Ada Lovelace,2025-01-01,09:00:00,Mathematics,Present", lines[1])
}

func TestStoreAppendPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(sampleRecord("S1", "09:00:00")))
	require.NoError(t, store.Append(sampleRecord("S2", "09:05:00")))
	require.NoError(t, store.Append(sampleRecord("S3", "09:10:00")))

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "S1", records[0].StudentID)
	require.Equal(t, "S2", records[1].StudentID)
	require.Equal(t, "S3", records[2].StudentID)
}

func TestStoreAppendRejectsDelimiterFields(t *testing.T) {
	store := newTestStore(t)

	withComma := sampleRecord("S1", "09:00:00")
	withComma.Name = "Lovelace, Ada"
	require.ErrorIs(t, store.Append(withComma), ErrInvalidField)

	withNewline := sampleRecord("S1", "09:00:00")
	withNewline.Subject = "Maths\nPhysics"
	require.ErrorIs(t, store.Append(withNewline), ErrInvalidField)

	withCR := sampleRecord("S1\r", "09:00:00")
	require.ErrorIs(t, store.Append(withCR), ErrInvalidField)

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestStoreRoundTripKeepsFieldsIntact(t *testing.T) {
	store := newTestStore(t)

	record := sampleRecord("S1", "09:00:00")
	record.Name = "Ada King-Lovelace"
	require.NoError(t, store.Append(record))

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Ada King-Lovelace", records[0].Name)
	require.Equal(t, "2025-01-01", records[0].Date)
	require.Equal(t, StatusPresent, records[0].Status)
}

func TestStoreConcurrentAppendAndUpdate(t *testing.T) {
	store := newTestStore(t)

	const seeded = 20
	for i := 0; i < seeded; i++ {
		record := sampleRecord(fmt.Sprintf("S%d", i), fmt.Sprintf("09:%02d:00", i))
		require.NoError(t, store.Append(record))
	}

	var wg sync.WaitGroup
	appendErrs := make([]error, seeded)
	updateErrs := make([]error, seeded)

	for i := 0; i < seeded; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			record := sampleRecord(fmt.Sprintf("N%d", i), fmt.Sprintf("10:%02d:00", i))
			appendErrs[i] = store.Append(record)
		}(i)
		go func(i int) {
			defer wg.Done()
			updateErrs[i] = store.UpdateStatus(fmt.Sprintf("S%d", i), "2025-01-01", fmt.Sprintf("09:%02d:00", i), StatusAbsent)
		}(i)
	}
	wg.Wait()

	for i := 0; i < seeded; i++ {
		require.NoError(t, appendErrs[i])
		require.NoError(t, updateErrs[i])
	}

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 2*seeded)

	byID := make(map[string]Record, len(records))
	for _, record := range records {
		byID[record.StudentID] = record
	}
	for i := 0; i < seeded; i++ {
		seededRow, ok := byID[fmt.Sprintf("S%d", i)]
		require.True(t, ok, "seeded row S%d lost", i)
		require.Equal(t, StatusAbsent, seededRow.Status)

		appendedRow, ok := byID[fmt.Sprintf("N%d", i)]
		require.True(t, ok, "appended row N%d lost", i)
		require.Equal(t, StatusPresent, appendedRow.Status)
	}
}

func TestStoreListSkipsHeaderAndShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	content := strings.Join([]string{
		"student_id,name,date,time,subject,status",
		"S1,Ada Lovelace,2025-01-01,09:00:00,Mathematics,Present",
		"broken,row",
		"",
		"S2,Grace Hopper,2025-01-02,10:00:00,Physics,Absent",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := NewStore(path, zerolog.Nop())
	records, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "S1", records[0].StudentID)
	require.Equal(t, "S2", records[1].StudentID)
}

func TestStoreListDateFilter(t *testing.T) {
	store := newTestStore(t)
	first := sampleRecord("S1", "09:00:00")
	second := sampleRecord("S2", "10:00:00")
	second.Date = "2025-01-02"
	require.NoError(t, store.Append(first))
	require.NoError(t, store.Append(second))

	records, err := store.List("2025-01-02")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "S2", records[0].StudentID)
}

func TestStoreParsedRecordCarriesDisplayID(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(sampleRecord("S1", "09:00:00")))

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "S1_2025-01-01_09-00-00", records[0].RecordID)
}

func TestStoreUpdateStatus(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(sampleRecord("S1", "09:00:00")))
	require.NoError(t, store.Append(sampleRecord("S2", "09:05:00")))

	require.NoError(t, store.UpdateStatus("S2", "2025-01-01", "09:05:00", StatusAbsent))

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Equal(t, StatusPresent, records[0].Status)
	require.Equal(t, StatusAbsent, records[1].Status)
}

func TestStoreUpdateStatusNotFound(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(sampleRecord("S1", "09:00:00")))

	err := store.UpdateStatus("S1", "2025-01-01", "11:00:00", StatusAbsent)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStoreFind(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(sampleRecord("S1", "09:00:00")))

	record, found, err := store.Find("S1", "2025-01-01", "09:00:00")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Ada Lovelace", record.Name)

	_, found, err = store.Find("S1", "2025-01-01", "09:30:00")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDisplayIDSanitizesUnsafeCharacters(t *testing.T) {
	require.Equal(t, "S1_2025-01-01_09-00-00", DisplayID("S1", "2025-01-01", "09:00:00"))
	require.Equal(t, "S_1_2025-01-01_09-00-00", DisplayID("S/1", "2025-01-01", "09:00:00"))
	require.Equal(t, "a_b_2025-01-01_10-15-00", DisplayID("a b", "2025-01-01", "10:15:00"))
}

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(StatusPresent))
	require.True(t, ValidStatus(StatusAbsent))
	require.False(t, ValidStatus("present"))
	require.False(t, ValidStatus("Late"))
	require.False(t, ValidStatus(""))
}
