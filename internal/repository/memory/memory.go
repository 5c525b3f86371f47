// Package memory holds in-process repositories for local development and tests.
// Entities are copied on the way in and out so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	adminDomain "github.com/pyrecrest/service-booking/internal/domain/admin"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
)

// BookingRepository is an in-memory booking.BookingRepository.
type BookingRepository struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]*bookingDomain.Booking
	byReference map[string]uuid.UUID
}

// NewBookingRepository creates an empty BookingRepository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		byID:        make(map[uuid.UUID]*bookingDomain.Booking),
		byReference: make(map[string]uuid.UUID),
	}
}

func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bk, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *BookingRepository) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReference[reference]
	if !ok {
		return nil, domain.NewNotFoundError("booking", reference)
	}
	return cloneBooking(r.byID[id]), nil
}

func (r *BookingRepository) FindActiveByProperty(_ context.Context, propertyID string) ([]*bookingDomain.Booking, error) {
	return r.filter(func(bk *bookingDomain.Booking) bool {
		return bk.PropertyID() == propertyID && bk.HoldsDates()
	}, func(a, b *bookingDomain.Booking) bool {
		return a.CheckIn().Before(b.CheckIn())
	}), nil
}

func (r *BookingRepository) FindByStatus(_ context.Context, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	return r.filter(func(bk *bookingDomain.Booking) bool {
		return bk.Status() == status
	}, func(a, b *bookingDomain.Booking) bool {
		return a.CreatedAt().Before(b.CreatedAt())
	}), nil
}

func (r *BookingRepository) ListAll(_ context.Context) ([]*bookingDomain.Booking, error) {
	return r.filter(func(*bookingDomain.Booking) bool { return true }, func(a, b *bookingDomain.Booking) bool {
		return a.CreatedAt().After(b.CreatedAt())
	}), nil
}

func (r *BookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byReference[bk.Reference()]; exists {
		return bookingDomain.ErrDuplicateReference
	}
	if _, exists := r.byID[bk.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.byID[bk.ID()] = cloneBooking(bk)
	r.byReference[bk.Reference()] = bk.ID()
	return nil
}

func (r *BookingRepository) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	if current.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.byID[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *BookingRepository) filter(keep func(*bookingDomain.Booking) bool, less func(a, b *bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*bookingDomain.Booking, 0, len(r.byID))
	for _, bk := range r.byID {
		if keep(bk) {
			out = append(out, cloneBooking(bk))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.Reference(), bk.PropertyID(), bk.Stay(), bk.Nights(), bk.Guest(),
		bk.BasePricePerNight(), bk.CleaningFee(), bk.TaxAmount(), bk.Total(), bk.Currency(),
		bk.Status(), bk.PaymentStatus(), bk.PaymentMethod(), bk.SpecialRequests(),
		copyTime(bk.ExpiresAt()), bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

// BlockedDateRepository is an in-memory blocked.Repository.
type BlockedDateRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*blockedDomain.BlockedDate
}

// NewBlockedDateRepository creates an empty BlockedDateRepository.
func NewBlockedDateRepository() *BlockedDateRepository {
	return &BlockedDateRepository{byID: make(map[uuid.UUID]*blockedDomain.BlockedDate)}
}

func (r *BlockedDateRepository) FindByID(_ context.Context, id uuid.UUID) (*blockedDomain.BlockedDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("blocked date", id.String())
	}
	return b, nil
}

func (r *BlockedDateRepository) FindByProperty(_ context.Context, propertyID string) ([]*blockedDomain.BlockedDate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*blockedDomain.BlockedDate, 0)
	for _, b := range r.byID {
		if propertyID == "" || b.PropertyID() == propertyID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period().Start.Before(out[j].Period().Start) })
	return out, nil
}

func (r *BlockedDateRepository) Save(_ context.Context, b *blockedDomain.BlockedDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.ID()] = b
	return nil
}

func (r *BlockedDateRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.NewNotFoundError("blocked date", id.String())
	}
	delete(r.byID, id)
	return nil
}

// AdminRepository is an in-memory admin.Repository keyed by email.
type AdminRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*adminDomain.Admin
}

// NewAdminRepository creates an empty AdminRepository.
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{byEmail: make(map[string]*adminDomain.Admin)}
}

func (r *AdminRepository) FindByEmail(_ context.Context, email string) (*adminDomain.Admin, error) {
	email = adminDomain.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byEmail[email]
	if !ok {
		return nil, domain.NewNotFoundError("admin", email)
	}
	return cloneAdmin(a), nil
}

func (r *AdminRepository) Save(_ context.Context, a *adminDomain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[a.Email()]; exists {
		return domain.NewConflictError("admin already exists")
	}
	r.byEmail[a.Email()] = cloneAdmin(a)
	return nil
}

func (r *AdminRepository) Update(_ context.Context, a *adminDomain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[a.Email()]; !exists {
		return domain.NewNotFoundError("admin", a.Email())
	}
	r.byEmail[a.Email()] = cloneAdmin(a)
	return nil
}

func cloneAdmin(a *adminDomain.Admin) *adminDomain.Admin {
	return adminDomain.ReconstructAdmin(
		a.ID(), a.Name(), a.Email(), a.PasswordHash(), a.Status(),
		copyTime(a.ApprovedAt()), a.CreatedAt(), a.UpdatedAt(),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
