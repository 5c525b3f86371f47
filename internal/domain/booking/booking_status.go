package booking

import "fmt"

// BookingStatus represents the reservation state of a booking.
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {},
	StatusCancelled:      {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return canTransition(validTransitions, s, target)
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// HoldsDates returns true if a booking in this status blocks its dates for other guests.
func (s BookingStatus) HoldsDates() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// ActiveStatuses lists the statuses that hold dates.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{StatusPendingPayment, StatusConfirmed}
}

// PaymentStatus represents the state of the guest's bank transfer.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
	PaymentExpired PaymentStatus = "expired"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed, PaymentExpired},
	PaymentFailed:  {PaymentPending, PaymentPaid, PaymentExpired},
	PaymentPaid:    {},
	PaymentExpired: {},
}

// isOpen reports whether the payment is still awaited.
func (p PaymentStatus) isOpen() bool {
	return p == PaymentPending || p == PaymentFailed
}

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	_, exists := paymentTransitions[p]
	return exists
}

// CanTransitionTo returns true if a transition from this payment status to the target is allowed.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	return canTransition(paymentTransitions, p, target)
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string {
	return string(p)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

func canTransition[S comparable](table map[S][]S, from, to S) bool {
	allowed, exists := table[from]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == to {
			return true
		}
	}
	return false
}
