package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	adminDomain "github.com/pyrecrest/service-booking/internal/domain/admin"
)

// AdminModel is the GORM model for the admins table.
type AdminModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"type:varchar(200);not null"`
	Email        string     `gorm:"type:varchar(320);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"`
	ApprovedAt   *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now()"`
}

func (AdminModel) TableName() string { return "admins" }

// GormAdminRepository implements admin.Repository using GORM.
type GormAdminRepository struct {
	db *gorm.DB
}

func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) FindByEmail(ctx context.Context, email string) (*adminDomain.Admin, error) {
	email = adminDomain.NormalizeEmail(email)
	var model AdminModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("admin", email)
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return toAdminDomain(&model), nil
}

func (r *GormAdminRepository) Save(ctx context.Context, a *adminDomain.Admin) error {
	model := toAdminModel(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("admin already exists")
		}
		return fmt.Errorf("failed to save admin: %w", err)
	}
	return nil
}

func (r *GormAdminRepository) Update(ctx context.Context, a *adminDomain.Admin) error {
	model := toAdminModel(a)
	result := r.db.WithContext(ctx).
		Model(&AdminModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"password_hash": model.PasswordHash,
			"status":        model.Status,
			"approved_at":   model.ApprovedAt,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("admin", model.Email)
	}
	return nil
}

// --- Conversions ---

func toAdminModel(a *adminDomain.Admin) *AdminModel {
	return &AdminModel{
		ID:           a.ID(),
		Name:         a.Name(),
		Email:        a.Email(),
		PasswordHash: a.PasswordHash(),
		Status:       string(a.Status()),
		ApprovedAt:   a.ApprovedAt(),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
	}
}

func toAdminDomain(m *AdminModel) *adminDomain.Admin {
	return adminDomain.ReconstructAdmin(
		m.ID,
		m.Name, m.Email, m.PasswordHash,
		adminDomain.Status(m.Status),
		m.ApprovedAt,
		m.CreatedAt, m.UpdatedAt,
	)
}
