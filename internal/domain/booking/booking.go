package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// PaymentMethodBankTransfer is the only payment method: guests pay by manual bank transfer.
const PaymentMethodBankTransfer = "bank_transfer"

// Guest holds the contact details of the person making the reservation.
type Guest struct {
	Name  string
	Email string
	Phone string
	Count int
}

// NewBookingParams holds the validated inputs for a new booking.
type NewBookingParams struct {
	PropertyID      string
	Stay            daterange.DateRange
	Guest           Guest
	Quote           Quote
	Currency        string
	SpecialRequests string
	Reference       string
	HoldWindow      time.Duration
}

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         uuid.UUID
	reference  string
	propertyID string
	stay       daterange.DateRange
	nights     int
	guest      Guest

	basePricePerNight int64
	cleaningFee       int64
	taxAmount         int64
	total             int64
	currency          string

	status          BookingStatus
	paymentStatus   PaymentStatus
	paymentMethod   string
	specialRequests string

	expiresAt *time.Time
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate in pending_payment with a hold that lapses
// after p.HoldWindow. A non-positive hold window leaves the booking without an expiry.
func NewBooking(p NewBookingParams, now time.Time) (*Booking, error) {
	if strings.TrimSpace(p.PropertyID) == "" {
		return nil, domain.NewValidationError("property ID is required")
	}
	if p.Stay.IsEmpty() {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	if strings.TrimSpace(p.Guest.Name) == "" || strings.TrimSpace(p.Guest.Email) == "" {
		return nil, domain.NewValidationError("missing required field")
	}
	if p.Guest.Count <= 0 {
		return nil, domain.NewValidationError("guest count must be positive")
	}
	if p.Quote.Total <= 0 {
		return nil, domain.NewValidationError("total must be positive")
	}
	if p.Reference == "" {
		return nil, domain.NewValidationError("booking reference is required")
	}

	now = now.UTC()
	var expiresAt *time.Time
	if p.HoldWindow > 0 {
		t := now.Add(p.HoldWindow)
		expiresAt = &t
	}

	return &Booking{
		id:                uuid.New(),
		reference:         p.Reference,
		propertyID:        p.PropertyID,
		stay:              p.Stay,
		nights:            p.Stay.Nights(),
		guest:             p.Guest,
		basePricePerNight: p.Quote.NightlyRate,
		cleaningFee:       p.Quote.CleaningFee,
		taxAmount:         p.Quote.Tax,
		total:             p.Quote.Total,
		currency:          p.Currency,
		status:            StatusPendingPayment,
		paymentStatus:     PaymentPending,
		paymentMethod:     PaymentMethodBankTransfer,
		specialRequests:   strings.TrimSpace(p.SpecialRequests),
		expiresAt:         expiresAt,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	reference string,
	propertyID string,
	stay daterange.DateRange,
	nights int,
	guest Guest,
	basePricePerNight int64,
	cleaningFee int64,
	taxAmount int64,
	total int64,
	currency string,
	status BookingStatus,
	paymentStatus PaymentStatus,
	paymentMethod string,
	specialRequests string,
	expiresAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		reference:         reference,
		propertyID:        propertyID,
		stay:              stay,
		nights:            nights,
		guest:             guest,
		basePricePerNight: basePricePerNight,
		cleaningFee:       cleaningFee,
		taxAmount:         taxAmount,
		total:             total,
		currency:          currency,
		status:            status,
		paymentStatus:     paymentStatus,
		paymentMethod:     paymentMethod,
		specialRequests:   specialRequests,
		expiresAt:         expiresAt,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-facing booking reference.
func (b *Booking) Reference() string { return b.reference }

// PropertyID returns the booked property's identifier.
func (b *Booking) PropertyID() string { return b.propertyID }

// Stay returns the half-open [check-in, check-out) range.
func (b *Booking) Stay() daterange.DateRange { return b.stay }

// CheckIn returns the check-in date.
func (b *Booking) CheckIn() time.Time { return b.stay.Start }

// CheckOut returns the check-out date.
func (b *Booking) CheckOut() time.Time { return b.stay.End }

// Nights returns the number of nights booked.
func (b *Booking) Nights() int { return b.nights }

// Guest returns the guest details.
func (b *Booking) Guest() Guest { return b.guest }

func (b *Booking) BasePricePerNight() int64 { return b.basePricePerNight }
func (b *Booking) CleaningFee() int64       { return b.cleaningFee }
func (b *Booking) TaxAmount() int64         { return b.taxAmount }
func (b *Booking) Total() int64             { return b.total }
func (b *Booking) Currency() string         { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// PaymentMethod returns how the guest pays.
func (b *Booking) PaymentMethod() string { return b.paymentMethod }

// SpecialRequests returns the guest's free-text requests.
func (b *Booking) SpecialRequests() string { return b.specialRequests }

// ExpiresAt returns when an unpaid hold lapses, or nil for bookings created without one.
func (b *Booking) ExpiresAt() *time.Time { return b.expiresAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// HoldsDates reports whether this booking blocks its dates for other guests.
func (b *Booking) HoldsDates() bool { return b.status.HoldsDates() }

// --- Behavior ---

// ApplyUpdate moves the booking to the requested status and/or payment status.
//
// Rules:
//   - at least one value must be supplied
//   - re-applying the current value is a no-op
//   - confirmed and cancelled bookings accept no further change
//   - confirming without a payment status marks the payment paid, and a confirmed booking
//     must be paid
//   - marking a pending booking paid confirms it, marking it expired cancels it
//   - a booking left in pending_payment keeps an open payment (pending or failed)
//
// It reports whether anything changed.
func (b *Booking) ApplyUpdate(status *BookingStatus, payment *PaymentStatus, now time.Time) (bool, error) {
	if status == nil && payment == nil {
		return false, domain.NewValidationError("no updates provided")
	}
	if status != nil && !status.IsValid() {
		return false, domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", *status))
	}
	if payment != nil && !payment.IsValid() {
		return false, domain.NewValidationError(fmt.Sprintf("invalid payment status: %s", *payment))
	}

	targetStatus := b.status
	if status != nil {
		targetStatus = *status
	}
	targetPayment := b.paymentStatus
	if payment != nil {
		targetPayment = *payment
	}

	if b.status == StatusPendingPayment {
		switch {
		case targetStatus == StatusConfirmed && payment == nil:
			targetPayment = PaymentPaid
		case status == nil && targetPayment == PaymentPaid:
			targetStatus = StatusConfirmed
		case status == nil && targetPayment == PaymentExpired:
			targetStatus = StatusCancelled
		}
	}

	if targetStatus == b.status && targetPayment == b.paymentStatus {
		return false, nil
	}

	if targetStatus != b.status && !b.status.CanTransitionTo(targetStatus) {
		return false, domain.NewInvalidStateError(string(b.status), string(targetStatus))
	}
	if targetPayment != b.paymentStatus {
		if b.status.IsTerminal() || !b.paymentStatus.CanTransitionTo(targetPayment) {
			return false, domain.NewInvalidStateError(string(b.paymentStatus), string(targetPayment))
		}
	}
	if targetStatus == StatusConfirmed && targetPayment != PaymentPaid {
		return false, domain.NewValidationError("a confirmed booking must be paid")
	}
	if targetStatus == StatusPendingPayment && !targetPayment.isOpen() {
		return false, domain.NewValidationError(fmt.Sprintf("a pending_payment booking cannot have payment status %s", targetPayment))
	}

	b.status = targetStatus
	b.paymentStatus = targetPayment
	b.updatedAt = now.UTC()
	return true, nil
}

// IsStale reports whether an unpaid hold has lapsed at now.
func (b *Booking) IsStale(now time.Time) bool {
	return b.status == StatusPendingPayment &&
		b.paymentStatus.isOpen() &&
		b.expiresAt != nil &&
		now.After(*b.expiresAt)
}

// ExpireIfStale cancels a pending booking whose hold has lapsed. Bookings without an expiry
// are never expired. It reports whether the booking changed.
func (b *Booking) ExpireIfStale(now time.Time) bool {
	if !b.IsStale(now) {
		return false
	}
	b.status = StatusCancelled
	b.paymentStatus = PaymentExpired
	b.updatedAt = now.UTC()
	return true
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}

// MatchesEmail reports whether email is the guest's address, ignoring case and surrounding space.
func (b *Booking) MatchesEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(b.guest.Email))
}
