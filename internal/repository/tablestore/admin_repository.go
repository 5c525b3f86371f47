package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	adminDomain "github.com/pyrecrest/service-booking/internal/domain/admin"
)

// adminEntity is keyed by the lower-cased email.
type adminEntity struct {
	keys
	ID           string `json:"Id"`
	Name         string `json:"Name"`
	PasswordHash string `json:"PasswordHash"`
	Status       string `json:"Status"`
	ApprovedAt   string `json:"ApprovedAt,omitempty"`
	CreatedAt    string `json:"CreatedAt"`
	UpdatedAt    string `json:"UpdatedAt"`
}

// AdminRepository implements admin.Repository on the table store.
type AdminRepository struct {
	client *aztables.Client
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*adminDomain.Admin, error) {
	email = adminDomain.NormalizeEmail(email)
	resp, err := r.client.GetEntity(ctx, PartitionAdmin, email, nil)
	if err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return nil, domain.NewNotFoundError("admin", email)
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return decodeAdmin(resp.Value)
}

func (r *AdminRepository) Save(ctx context.Context, a *adminDomain.Admin) error {
	row, err := json.Marshal(toAdminEntity(a))
	if err != nil {
		return fmt.Errorf("failed to encode admin: %w", err)
	}
	if _, err := r.client.AddEntity(ctx, row, nil); err != nil {
		if hasStatus(err, http.StatusConflict) {
			return domain.NewConflictError("admin already exists")
		}
		return fmt.Errorf("failed to save admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) Update(ctx context.Context, a *adminDomain.Admin) error {
	row, err := json.Marshal(toAdminEntity(a))
	if err != nil {
		return fmt.Errorf("failed to encode admin: %w", err)
	}
	if _, err := r.client.UpdateEntity(ctx, row, &aztables.UpdateEntityOptions{UpdateMode: aztables.UpdateModeMerge}); err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return domain.NewNotFoundError("admin", a.Email())
		}
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return nil
}

func toAdminEntity(a *adminDomain.Admin) adminEntity {
	e := adminEntity{
		keys:         keys{PartitionKey: PartitionAdmin, RowKey: a.Email()},
		ID:           a.ID().String(),
		Name:         a.Name(),
		PasswordHash: a.PasswordHash(),
		Status:       string(a.Status()),
		CreatedAt:    a.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:    a.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
	if t := a.ApprovedAt(); t != nil {
		e.ApprovedAt = t.UTC().Format(time.RFC3339Nano)
	}
	return e
}

func decodeAdmin(raw []byte) (*adminDomain.Admin, error) {
	var e adminEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode admin: %w", err)
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin id %q: %w", e.ID, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, e.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, e.UpdatedAt)
	var approvedAt *time.Time
	if e.ApprovedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, e.ApprovedAt); err == nil {
			approvedAt = &t
		}
	}
	return adminDomain.ReconstructAdmin(
		id, e.Name, e.RowKey, e.PasswordHash, adminDomain.Status(e.Status),
		approvedAt, createdAt, updatedAt,
	), nil
}
