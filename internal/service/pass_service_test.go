package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/models"
	"github.com/campuspass/campuspass-api/internal/qr"
)

func testRoster() map[uint]models.Student {
	return map[uint]models.Student{
		1: {ID: 1, Name: "Ada Lovelace", Email: "ada@example.edu"},
		2: {ID: 2, Name: "Grace Hopper", Email: "grace@example.edu"},
		3: {ID: 3, Name: "Alan Turing", Email: "alan@example.edu"},
	}
}

func seedEvent(t *testing.T, events *memoryEventRepo) models.Event {
	t.Helper()
	event := models.Event{
		EventID: "EVT1A2B3C4D5E6F7G8",
		Title:   "Tech Fest",
		Date:    "2025-03-14",
		Time:    "10:00:00",
		Status:  models.EventStatusActive,
	}
	require.NoError(t, events.Create(context.Background(), &event))
	return event
}

func newPassServiceForTest(t *testing.T) (PassService, *memoryEventRepo, *memoryPassRepo) {
	t.Helper()
	roster := testRoster()
	events := newMemoryEventRepo()
	passes := newMemoryPassRepo(roster)
	students := newMemoryStudentRepo(roster)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewPassService(passes, events, students, validate, testLogger()), events, passes
}

func TestPassServiceIssueBatch(t *testing.T) {
	svc, events, _ := newPassServiceForTest(t)
	event := seedEvent(t, events)

	result, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1, 2}})
	require.NoError(t, err)
	require.Len(t, result.Issued, 2)
	require.Empty(t, result.Errors)

	for _, issued := range result.Issued {
		require.Equal(t, event.EventID, issued.EventID)
		require.False(t, issued.IsUsed)

		payload, err := qr.Decode(issued.QRData)
		require.NoError(t, err)
		require.NotNil(t, payload.Pass)
		require.Equal(t, issued.PassID, payload.Pass.PassID)
		require.Equal(t, event.EventID, payload.Pass.EventID)
	}
}

func TestPassServiceIssueIdempotentPerStudent(t *testing.T) {
	svc, events, passes := newPassServiceForTest(t)
	event := seedEvent(t, events)

	first, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1, 2}})
	require.NoError(t, err)
	require.Len(t, first.Issued, 2)

	passFor := func(result dto.PassIssueResponse, studentID uint) dto.PassResponse {
		for _, issued := range result.Issued {
			if issued.StudentID == studentID {
				return issued
			}
		}
		t.Fatalf("no pass issued for student %d", studentID)
		return dto.PassResponse{}
	}

	second, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1, 3}})
	require.NoError(t, err)
	require.Len(t, second.Issued, 2)
	require.Empty(t, second.Errors)

	require.Equal(t, passFor(first, 1).PassID, passFor(second, 1).PassID)
	require.NotEqual(t, passFor(second, 1).PassID, passFor(second, 3).PassID)

	all, err := passes.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestPassServiceIssueUnknownStudentDoesNotAbortBatch(t *testing.T) {
	svc, events, _ := newPassServiceForTest(t)
	event := seedEvent(t, events)

	result, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1, 99}})
	require.NoError(t, err)
	require.Len(t, result.Issued, 1)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "student not found: 99")
}

func TestPassServiceIssueUnknownEvent(t *testing.T) {
	svc, _, _ := newPassServiceForTest(t)

	_, err := svc.Issue(context.Background(), "EVTMISSING", dto.PassIssueRequest{StudentIDs: []uint{1}})
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestPassServiceIssueRejectsEmptyBatch(t *testing.T) {
	svc, events, _ := newPassServiceForTest(t)
	event := seedEvent(t, events)

	_, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: nil})
	require.Error(t, err)
}

func TestPassServiceIssueRecoversExistingPassOnDuplicateKey(t *testing.T) {
	roster := testRoster()
	events := newMemoryEventRepo()
	passes := newMemoryPassRepo(roster)
	students := newMemoryStudentRepo(roster)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewPassService(passes, events, students, validate, testLogger())

	event := seedEvent(t, events)

	// The pair already holds a pass; issuance must return it untouched.
	existing := models.Pass{
		PassID:    "PASSEXISTING",
		EventID:   event.ID,
		StudentID: 1,
		QRData:    datatypes.JSON(`{"type":"event_pass"}`),
	}
	require.NoError(t, passes.Create(context.Background(), &existing))

	result, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1}})
	require.NoError(t, err)
	require.Len(t, result.Issued, 1)
	require.Equal(t, "PASSEXISTING", result.Issued[0].PassID)
}

func TestPassServiceIssueSurfacesRepositoryFailure(t *testing.T) {
	roster := testRoster()
	events := newMemoryEventRepo()
	passes := newMemoryPassRepo(roster)
	students := newMemoryStudentRepo(roster)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewPassService(passes, events, students, validate, testLogger())

	event := seedEvent(t, events)
	passes.createErr = errors.New("disk on fire")

	result, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1}})
	require.NoError(t, err)
	require.Empty(t, result.Issued)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "disk on fire")
}

func TestPassServiceListByEvent(t *testing.T) {
	svc, events, _ := newPassServiceForTest(t)
	event := seedEvent(t, events)

	_, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1, 2, 3}})
	require.NoError(t, err)

	listed, err := svc.ListByEvent(context.Background(), event.EventID)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	_, err = svc.ListByEvent(context.Background(), "EVTMISSING")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestPassServiceQRCode(t *testing.T) {
	svc, events, _ := newPassServiceForTest(t)
	event := seedEvent(t, events)

	result, err := svc.Issue(context.Background(), event.EventID, dto.PassIssueRequest{StudentIDs: []uint{1}})
	require.NoError(t, err)
	require.Len(t, result.Issued, 1)

	png, err := svc.QRCode(context.Background(), result.Issued[0].PassID, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	_, err = svc.QRCode(context.Background(), "PASSMISSING", 0)
	require.ErrorIs(t, err, ErrPassNotFound)
}
