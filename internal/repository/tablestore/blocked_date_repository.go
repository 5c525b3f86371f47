package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

type blockedDateEntity struct {
	keys
	PropertyID string `json:"PropertyId"`
	StartDate  string `json:"StartDate"`
	EndDate    string `json:"EndDate"`
	Reason     string `json:"Reason"`
	CreatedBy  string `json:"CreatedBy"`
	CreatedAt  string `json:"CreatedAt"`
}

// BlockedDateRepository implements blocked.Repository on the table store.
type BlockedDateRepository struct {
	client *aztables.Client
}

func (r *BlockedDateRepository) FindByID(ctx context.Context, id uuid.UUID) (*blockedDomain.BlockedDate, error) {
	resp, err := r.client.GetEntity(ctx, PartitionBlocked, id.String(), nil)
	if err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return nil, domain.NewNotFoundError("blocked date", id.String())
		}
		return nil, fmt.Errorf("failed to find blocked date: %w", err)
	}
	return decodeBlockedDate(resp.Value)
}

func (r *BlockedDateRepository) FindByProperty(ctx context.Context, propertyID string) ([]*blockedDomain.BlockedDate, error) {
	filter := partitionFilter(PartitionBlocked)
	if propertyID != "" {
		filter += " and PropertyId eq " + quote(propertyID)
	}

	out := make([]*blockedDomain.BlockedDate, 0)
	err := query(ctx, r.client, filter, func(raw []byte) error {
		b, err := decodeBlockedDate(raw)
		if err != nil {
			return err
		}
		out = append(out, b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked dates: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period().Start.Before(out[j].Period().Start) })
	return out, nil
}

func (r *BlockedDateRepository) Save(ctx context.Context, b *blockedDomain.BlockedDate) error {
	row, err := json.Marshal(blockedDateEntity{
		keys:       keys{PartitionKey: PartitionBlocked, RowKey: b.ID().String()},
		PropertyID: b.PropertyID(),
		StartDate:  b.Period().Start.Format(daterange.DateLayout),
		EndDate:    b.Period().End.Format(daterange.DateLayout),
		Reason:     b.Reason(),
		CreatedBy:  b.CreatedBy(),
		CreatedAt:  b.CreatedAt().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to encode blocked date: %w", err)
	}
	if _, err := r.client.AddEntity(ctx, row, nil); err != nil {
		return fmt.Errorf("failed to save blocked date: %w", err)
	}
	return nil
}

func (r *BlockedDateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.client.DeleteEntity(ctx, PartitionBlocked, id.String(), nil); err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return domain.NewNotFoundError("blocked date", id.String())
		}
		return fmt.Errorf("failed to delete blocked date: %w", err)
	}
	return nil
}

func decodeBlockedDate(raw []byte) (*blockedDomain.BlockedDate, error) {
	var e blockedDateEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode blocked date: %w", err)
	}
	id, err := uuid.Parse(e.RowKey)
	if err != nil {
		return nil, fmt.Errorf("invalid blocked date id %q: %w", e.RowKey, err)
	}
	start, err := daterange.ParseDate(e.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := daterange.ParseDate(e.EndDate)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, e.CreatedAt)

	return blockedDomain.ReconstructBlockedDate(
		id, e.PropertyID, daterange.New(start, end), e.Reason, e.CreatedBy, createdAt,
	), nil
}
