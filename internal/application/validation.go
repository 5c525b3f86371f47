package application

import (
	"regexp"
	"strings"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validation messages returned to clients.
const (
	msgMissingField     = "missing required field"
	msgUnknownProperty  = "unknown property"
	msgInvalidEmail     = "invalid email address"
	msgInvalidDate      = "invalid date: expected YYYY-MM-DD"
	msgCheckInPast      = "check-in in the past"
	msgCheckOutOrder    = "check-out must be after check-in"
	msgMinimumStay      = "minimum stay not met"
	msgDatesBooked      = "dates already booked"
	msgDatesBlocked     = "dates blocked"
	msgNoUpdates        = "no updates provided"
	msgPropertyBusy     = "another booking for this property is in progress, please retry"
	msgBookingCollision = "could not allocate a booking reference, please retry"
)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// parseStay parses both dates and checks their order.
func parseStay(checkIn, checkOut string) (daterange.DateRange, error) {
	start, err := daterange.ParseDate(checkIn)
	if err != nil {
		return daterange.DateRange{}, domain.NewValidationError(msgInvalidDate)
	}
	end, err := daterange.ParseDate(checkOut)
	if err != nil {
		return daterange.DateRange{}, domain.NewValidationError(msgInvalidDate)
	}
	stay := daterange.New(start, end)
	if stay.IsEmpty() {
		return daterange.DateRange{}, domain.NewValidationError(msgCheckOutOrder)
	}
	return stay, nil
}
