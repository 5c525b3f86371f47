package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
	"github.com/pyrecrest/service-booking/internal/domain/property"
)

// CreateBlockedDateRequest holds the data to block a property's dates.
type CreateBlockedDateRequest struct {
	PropertyID string `json:"propertyId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Reason     string `json:"reason" binding:"max=500"`
}

// BlockedDateDTO is the API response representation of a blocked date range.
type BlockedDateDTO struct {
	ID         uuid.UUID `json:"id"`
	PropertyID string    `json:"propertyId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Reason     string    `json:"reason,omitempty"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BlockedDateService handles admin blocked-date use cases.
type BlockedDateService struct {
	repo    blockedDomain.Repository
	catalog property.Catalog
	clock   domain.Clock
	logger  *zap.Logger
}

// NewBlockedDateService creates a new BlockedDateService.
func NewBlockedDateService(repo blockedDomain.Repository, catalog property.Catalog, clock domain.Clock, logger *zap.Logger) *BlockedDateService {
	return &BlockedDateService{repo: repo, catalog: catalog, clock: clock, logger: logger}
}

// CreateBlockedDate blocks [StartDate, EndDate) on a property. Existing bookings are not
// affected.
func (s *BlockedDateService) CreateBlockedDate(ctx context.Context, createdBy string, req CreateBlockedDateRequest) (*BlockedDateDTO, error) {
	if anyBlank(req.PropertyID, req.StartDate, req.EndDate) {
		return nil, domain.NewValidationError(msgMissingField)
	}
	prop, err := s.catalog.FindByID(ctx, strings.TrimSpace(req.PropertyID))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError(msgUnknownProperty)
		}
		return nil, err
	}

	start, err := daterange.ParseDate(req.StartDate)
	if err != nil {
		return nil, domain.NewValidationError(msgInvalidDate)
	}
	end, err := daterange.ParseDate(req.EndDate)
	if err != nil {
		return nil, domain.NewValidationError(msgInvalidDate)
	}

	b, err := blockedDomain.NewBlockedDate(prop.ID, daterange.New(start, end), req.Reason, createdBy, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save blocked date: %w", err)
	}

	s.logger.Info("dates blocked",
		zap.String("property_id", b.PropertyID()),
		zap.String("period", b.Period().String()),
		zap.String("created_by", createdBy),
	)

	return toBlockedDateDTO(b), nil
}

// ListBlockedDates returns the blocked ranges of a property, or of every property when
// propertyID is empty.
func (s *BlockedDateService) ListBlockedDates(ctx context.Context, propertyID string) ([]*BlockedDateDTO, error) {
	blocks, err := s.repo.FindByProperty(ctx, strings.TrimSpace(propertyID))
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked dates: %w", err)
	}

	dtos := make([]*BlockedDateDTO, len(blocks))
	for i, b := range blocks {
		dtos[i] = toBlockedDateDTO(b)
	}
	return dtos, nil
}

// DeleteBlockedDate removes a blocked range.
func (s *BlockedDateService) DeleteBlockedDate(ctx context.Context, id string) error {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return domain.NewNotFoundError("blocked date", id)
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}

	s.logger.Info("blocked date removed", zap.String("id", uid.String()))
	return nil
}

func toBlockedDateDTO(b *blockedDomain.BlockedDate) *BlockedDateDTO {
	return &BlockedDateDTO{
		ID:         b.ID(),
		PropertyID: b.PropertyID(),
		StartDate:  b.Period().Start.Format(daterange.DateLayout),
		EndDate:    b.Period().End.Format(daterange.DateLayout),
		Reason:     b.Reason(),
		CreatedBy:  b.CreatedBy(),
		CreatedAt:  b.CreatedAt(),
	}
}
