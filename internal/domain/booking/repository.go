package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicateReference is returned by Save when another booking already holds the reference.
var ErrDuplicateReference = errors.New("booking reference already exists")

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its human-facing reference.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// FindActiveByProperty retrieves the pending_payment and confirmed bookings of a property.
	FindActiveByProperty(ctx context.Context, propertyID string) ([]*Booking, error)

	// FindByStatus retrieves every booking in the given status.
	FindByStatus(ctx context.Context, status BookingStatus) ([]*Booking, error)

	// ListAll retrieves all bookings, newest created first.
	ListAll(ctx context.Context) ([]*Booking, error)

	// Save persists a new booking. It returns ErrDuplicateReference on a reference collision.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking. The booking
	// must carry the incremented version; a stale version yields a ConflictError.
	Update(ctx context.Context, booking *Booking) error
}
