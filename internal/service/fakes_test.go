package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campuspass/campuspass-api/internal/models"
	"github.com/campuspass/campuspass-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryEventRepo struct {
	mu     sync.Mutex
	events map[string]models.Event
	nextID uint
}

func newMemoryEventRepo() *memoryEventRepo {
	return &memoryEventRepo{
		events: make(map[string]models.Event),
		nextID: 1,
	}
}

func (m *memoryEventRepo) Create(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.events[event.EventID]; exists {
		return gorm.ErrDuplicatedKey
	}

	event.ID = m.nextID
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	m.nextID++
	m.events[event.EventID] = *event
	return nil
}

func (m *memoryEventRepo) GetByID(ctx context.Context, id uint) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, event := range m.events {
		if event.ID == id {
			return event, nil
		}
	}
	return models.Event{}, gorm.ErrRecordNotFound
}

func (m *memoryEventRepo) GetByEventID(ctx context.Context, eventID string) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return models.Event{}, gorm.ErrRecordNotFound
	}
	return event, nil
}

func (m *memoryEventRepo) ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]models.Event, 0, len(m.events))
	for _, event := range m.events {
		if event.CreatedBy == creatorID {
			results = append(results, event)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID > results[j].ID
	})
	return results, nil
}

func (m *memoryEventRepo) UpdateStatus(ctx context.Context, eventID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.Status = status
	event.UpdatedAt = time.Now()
	m.events[eventID] = event
	return nil
}

type passPair struct {
	eventID   uint
	studentID uint
}

type memoryPassRepo struct {
	mu       sync.Mutex
	byPassID map[string]models.Pass
	byPair   map[passPair]string
	students map[uint]models.Student
	nextID   uint

	// createErr, when non-nil, fails the next Create call once.
	createErr error
}

func newMemoryPassRepo(students map[uint]models.Student) *memoryPassRepo {
	if students == nil {
		students = make(map[uint]models.Student)
	}
	return &memoryPassRepo{
		byPassID: make(map[string]models.Pass),
		byPair:   make(map[passPair]string),
		students: students,
		nextID:   1,
	}
}

func (m *memoryPassRepo) withStudent(pass models.Pass) models.Pass {
	if student, ok := m.students[pass.StudentID]; ok {
		pass.Student = student
	}
	return pass
}

func (m *memoryPassRepo) Create(ctx context.Context, pass *models.Pass) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}

	pair := passPair{eventID: pass.EventID, studentID: pass.StudentID}
	if _, exists := m.byPair[pair]; exists {
		return gorm.ErrDuplicatedKey
	}
	if _, exists := m.byPassID[pass.PassID]; exists {
		return gorm.ErrDuplicatedKey
	}

	pass.ID = m.nextID
	pass.CreatedAt = time.Now()
	pass.UpdatedAt = time.Now()
	m.nextID++
	m.byPassID[pass.PassID] = *pass
	m.byPair[pair] = pass.PassID
	return nil
}

func (m *memoryPassRepo) GetByPassID(ctx context.Context, passID string) (models.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, ok := m.byPassID[passID]
	if !ok {
		return models.Pass{}, gorm.ErrRecordNotFound
	}
	return m.withStudent(pass), nil
}

func (m *memoryPassRepo) FindByEventAndStudent(ctx context.Context, eventID, studentID uint) (models.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	passID, ok := m.byPair[passPair{eventID: eventID, studentID: studentID}]
	if !ok {
		return models.Pass{}, gorm.ErrRecordNotFound
	}
	return m.withStudent(m.byPassID[passID]), nil
}

func (m *memoryPassRepo) ListByEvent(ctx context.Context, eventID uint) ([]models.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]models.Pass, 0, len(m.byPassID))
	for _, pass := range m.byPassID {
		if pass.EventID == eventID {
			results = append(results, m.withStudent(pass))
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID > results[j].ID
	})
	return results, nil
}

func (m *memoryPassRepo) Redeem(ctx context.Context, passID string, scannerID uint, usedAt time.Time) (models.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, ok := m.byPassID[passID]
	if !ok {
		return models.Pass{}, gorm.ErrRecordNotFound
	}
	if pass.IsUsed {
		return models.Pass{}, repository.ErrPassAlreadyRedeemed
	}

	pass.IsUsed = true
	pass.UsedAt = &usedAt
	pass.ScannedBy = &scannerID
	pass.UpdatedAt = usedAt
	m.byPassID[passID] = pass
	return m.withStudent(pass), nil
}

type memoryStudentRepo struct {
	students map[uint]models.Student
}

func newMemoryStudentRepo(students map[uint]models.Student) *memoryStudentRepo {
	if students == nil {
		students = make(map[uint]models.Student)
	}
	return &memoryStudentRepo{students: students}
}

func (m *memoryStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (m *memoryStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	results := make([]models.Student, 0, len(m.students))
	for _, student := range m.students {
		results = append(results, student)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results, nil
}
