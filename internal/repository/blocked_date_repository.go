package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// BlockedDateModel is the GORM model for the blocked_dates table.
type BlockedDateModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID string    `gorm:"type:varchar(64);not null;index"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	Reason     string    `gorm:"type:text"`
	CreatedBy  string    `gorm:"type:varchar(320)"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (BlockedDateModel) TableName() string { return "blocked_dates" }

// GormBlockedDateRepository implements blocked.Repository using GORM.
type GormBlockedDateRepository struct {
	db *gorm.DB
}

// NewGormBlockedDateRepository creates a new GormBlockedDateRepository.
func NewGormBlockedDateRepository(db *gorm.DB) *GormBlockedDateRepository {
	return &GormBlockedDateRepository{db: db}
}

// Save persists a new blocked date.
func (r *GormBlockedDateRepository) Save(ctx context.Context, b *blockedDomain.BlockedDate) error {
	model := toBlockedDateModel(b)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save blocked date: %w", err)
	}
	return nil
}

// FindByProperty returns a property's blocked dates ordered by start date.
func (r *GormBlockedDateRepository) FindByProperty(ctx context.Context, propertyID string) ([]*blockedDomain.BlockedDate, error) {
	query := r.db.WithContext(ctx)
	if propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}

	var models []BlockedDateModel
	if err := query.Order("start_date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find blocked dates: %w", err)
	}

	out := make([]*blockedDomain.BlockedDate, len(models))
	for i := range models {
		out[i] = toBlockedDateDomain(&models[i])
	}
	return out, nil
}

// FindByID returns a single blocked date by ID.
func (r *GormBlockedDateRepository) FindByID(ctx context.Context, id uuid.UUID) (*blockedDomain.BlockedDate, error) {
	var model BlockedDateModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("blocked date", id.String())
		}
		return nil, fmt.Errorf("failed to find blocked date: %w", err)
	}
	return toBlockedDateDomain(&model), nil
}

// Delete removes a blocked date.
func (r *GormBlockedDateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BlockedDateModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete blocked date: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("blocked date", id.String())
	}
	return nil
}

func toBlockedDateModel(b *blockedDomain.BlockedDate) BlockedDateModel {
	return BlockedDateModel{
		ID:         b.ID(),
		PropertyID: b.PropertyID(),
		StartDate:  b.Period().Start,
		EndDate:    b.Period().End,
		Reason:     b.Reason(),
		CreatedBy:  b.CreatedBy(),
		CreatedAt:  b.CreatedAt(),
	}
}

func toBlockedDateDomain(m *BlockedDateModel) *blockedDomain.BlockedDate {
	return blockedDomain.ReconstructBlockedDate(
		m.ID,
		m.PropertyID,
		daterange.New(m.StartDate, m.EndDate),
		m.Reason,
		m.CreatedBy,
		m.CreatedAt,
	)
}
