package admin

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
)

// Status is the approval state of an admin account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Admin is a staff account allowed to manage bookings once approved.
type Admin struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	status       Status
	approvedAt   *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewAdmin creates a pending admin. The email is stored lower-cased.
func NewAdmin(name, email, passwordHash string, now time.Time) (*Admin, error) {
	email = NormalizeEmail(email)
	if strings.TrimSpace(name) == "" || email == "" {
		return nil, domain.NewValidationError("missing required field")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	now = now.UTC()
	return &Admin{
		id:           uuid.New(),
		name:         strings.TrimSpace(name),
		email:        email,
		passwordHash: passwordHash,
		status:       StatusPending,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructAdmin rebuilds an Admin from persistence data (no validation).
func ReconstructAdmin(id uuid.UUID, name, email, passwordHash string, status Status, approvedAt *time.Time, createdAt, updatedAt time.Time) *Admin {
	return &Admin{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		status:       status,
		approvedAt:   approvedAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (a *Admin) ID() uuid.UUID          { return a.id }
func (a *Admin) Name() string           { return a.name }
func (a *Admin) Email() string          { return a.email }
func (a *Admin) PasswordHash() string   { return a.passwordHash }
func (a *Admin) Status() Status         { return a.status }
func (a *Admin) ApprovedAt() *time.Time { return a.approvedAt }
func (a *Admin) CreatedAt() time.Time   { return a.createdAt }
func (a *Admin) UpdatedAt() time.Time   { return a.updatedAt }

// IsApproved reports whether the admin may sign in.
func (a *Admin) IsApproved() bool { return a.status == StatusApproved }

// Approve marks the admin approved. It reports false when the admin already was.
func (a *Admin) Approve(now time.Time) bool {
	if a.IsApproved() {
		return false
	}
	now = now.UTC()
	a.status = StatusApproved
	a.approvedAt = &now
	a.updatedAt = now
	return true
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository defines the persistence contract for admin accounts.
type Repository interface {
	// FindByEmail returns a NotFoundError when no admin has the address.
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	// Save persists a new admin. A duplicate email yields a ConflictError.
	Save(ctx context.Context, a *Admin) error
	Update(ctx context.Context, a *Admin) error
}
