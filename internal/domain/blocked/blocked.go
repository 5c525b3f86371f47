package blocked

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// BlockedDate is an admin-declared interval during which a property cannot be booked.
type BlockedDate struct {
	id         uuid.UUID
	propertyID string
	period     daterange.DateRange
	reason     string
	createdBy  string
	createdAt  time.Time
}

// NewBlockedDate creates a BlockedDate covering the half-open period.
func NewBlockedDate(propertyID string, period daterange.DateRange, reason, createdBy string, now time.Time) (*BlockedDate, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, domain.NewValidationError("property ID is required")
	}
	if period.IsEmpty() {
		return nil, domain.NewValidationError("end date must be after start date")
	}
	return &BlockedDate{
		id:         uuid.New(),
		propertyID: propertyID,
		period:     period,
		reason:     strings.TrimSpace(reason),
		createdBy:  createdBy,
		createdAt:  now.UTC(),
	}, nil
}

// ReconstructBlockedDate rebuilds a BlockedDate from persistence data (no validation).
func ReconstructBlockedDate(id uuid.UUID, propertyID string, period daterange.DateRange, reason, createdBy string, createdAt time.Time) *BlockedDate {
	return &BlockedDate{
		id:         id,
		propertyID: propertyID,
		period:     period,
		reason:     reason,
		createdBy:  createdBy,
		createdAt:  createdAt,
	}
}

func (b *BlockedDate) ID() uuid.UUID               { return b.id }
func (b *BlockedDate) PropertyID() string          { return b.propertyID }
func (b *BlockedDate) Period() daterange.DateRange { return b.period }
func (b *BlockedDate) Reason() string              { return b.reason }
func (b *BlockedDate) CreatedBy() string           { return b.createdBy }
func (b *BlockedDate) CreatedAt() time.Time        { return b.createdAt }

// Repository defines the persistence contract for blocked dates.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BlockedDate, error)
	// FindByProperty returns the property's blocked dates ordered by start date.
	// An empty propertyID returns every blocked date.
	FindByProperty(ctx context.Context, propertyID string) ([]*BlockedDate, error)
	Save(ctx context.Context, b *BlockedDate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
