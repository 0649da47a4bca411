package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campuspass/campuspass-api/internal/models"
)

// ErrPassAlreadyRedeemed indicates a redemption attempt on a pass whose
// single use has already been consumed.
var ErrPassAlreadyRedeemed = errors.New("pass already redeemed")

// PassRepository defines persistence operations for event passes. Create
// relies on the composite unique index over (event_id, student_id) and
// surfaces gorm.ErrDuplicatedKey so callers can recover the existing row.
type PassRepository interface {
	Create(ctx context.Context, pass *models.Pass) error
	GetByPassID(ctx context.Context, passID string) (models.Pass, error)
	FindByEventAndStudent(ctx context.Context, eventID, studentID uint) (models.Pass, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Pass, error)
	Redeem(ctx context.Context, passID string, scannerID uint, usedAt time.Time) (models.Pass, error)
}

type passRepository struct {
	db *gorm.DB
}

// NewPassRepository instantiates a GORM-backed repository.
func NewPassRepository(db *gorm.DB) PassRepository {
	return &passRepository{db: db}
}

func (r *passRepository) Create(ctx context.Context, pass *models.Pass) error {
	return r.db.WithContext(ctx).Create(pass).Error
}

func (r *passRepository) GetByPassID(ctx context.Context, passID string) (models.Pass, error) {
	var pass models.Pass
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("pass_id = ?", passID).
		First(&pass).Error; err != nil {
		return models.Pass{}, err
	}

	return pass, nil
}

func (r *passRepository) FindByEventAndStudent(ctx context.Context, eventID, studentID uint) (models.Pass, error) {
	var pass models.Pass
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		First(&pass).Error; err != nil {
		return models.Pass{}, err
	}

	return pass, nil
}

func (r *passRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Pass, error) {
	var passes []models.Pass
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&passes).Error; err != nil {
		return nil, err
	}

	return passes, nil
}

// Redeem consumes the pass's single use with a conditional update: the
// transition fires only while is_used is still false, so under concurrent
// attempts exactly one caller wins. Losers are told apart from unknown
// passes by a follow-up read.
func (r *passRepository) Redeem(ctx context.Context, passID string, scannerID uint, usedAt time.Time) (models.Pass, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Pass{}).
		Where("pass_id = ? AND is_used = ?", passID, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_at":    usedAt,
			"scanned_by": scannerID,
		})
	if result.Error != nil {
		return models.Pass{}, result.Error
	}

	if result.RowsAffected == 0 {
		var existing models.Pass
		if err := r.db.WithContext(ctx).Where("pass_id = ?", passID).First(&existing).Error; err != nil {
			return models.Pass{}, err
		}
		return models.Pass{}, ErrPassAlreadyRedeemed
	}

	return r.GetByPassID(ctx, passID)
}
