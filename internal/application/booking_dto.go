package application

import (
	"time"

	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// GuestDetailsRequest holds the guest's contact details.
type GuestDetailsRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	GuestCount int    `json:"guestCount"`
}

// CreateBookingRequest holds the data needed to create a new booking. Dates are ISO
// calendar dates ("2025-06-01"); full timestamps are accepted and truncated to their date.
type CreateBookingRequest struct {
	PropertyID      string              `json:"propertyId"`
	CheckIn         string              `json:"checkIn"`
	CheckOut        string              `json:"checkOut"`
	GuestDetails    GuestDetailsRequest `json:"guestDetails"`
	SpecialRequests string              `json:"specialRequests"`
}

// StayRequest identifies a property and date range, for availability checks and quotes.
type StayRequest struct {
	PropertyID string `json:"propertyId"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
}

// UpdateBookingRequest is an admin status change. At least one of the pointers must be set.
type UpdateBookingRequest struct {
	ID            string  `json:"id"`
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                string     `json:"id"`
	BookingReference  string     `json:"bookingReference"`
	PropertyID        string     `json:"propertyId"`
	CheckIn           string     `json:"checkIn"`
	CheckOut          string     `json:"checkOut"`
	Nights            int        `json:"nights"`
	GuestName         string     `json:"guestName"`
	GuestEmail        string     `json:"guestEmail"`
	GuestPhone        string     `json:"guestPhone"`
	GuestCount        int        `json:"guestCount"`
	BasePricePerNight int64      `json:"basePrice"`
	CleaningFee       int64      `json:"cleaningFee"`
	TaxAmount         int64      `json:"taxAmount"`
	Total             int64      `json:"total"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	PaymentStatus     string     `json:"paymentStatus"`
	PaymentMethod     string     `json:"paymentMethod"`
	SpecialRequests   string     `json:"specialRequests,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// BookingCreatedDTO is returned by a successful booking creation.
type BookingCreatedDTO struct {
	Success          bool                      `json:"success"`
	BookingID        string                    `json:"bookingId"`
	BookingReference string                    `json:"bookingReference"`
	BookingDetails   BookingDTO                `json:"bookingDetails"`
	BankDetails      bookingDomain.BankDetails `json:"bankDetails"`
	EmailSent        bool                      `json:"emailSent"`
	EmailError       string                    `json:"emailError,omitempty"`
}

// AvailabilityDTO answers an availability check.
type AvailabilityDTO struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// QuoteDTO is a price preview for a stay.
type QuoteDTO struct {
	PropertyID  string `json:"propertyId"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Nights      int    `json:"nights"`
	NightlyRate int64  `json:"nightlyRate"`
	RoomCharge  int64  `json:"roomCharge"`
	CleaningFee int64  `json:"cleaningFee"`
	Subtotal    int64  `json:"subtotal"`
	Tax         int64  `json:"tax"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

// DateRangeDTO is a half-open range of calendar dates.
type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CalendarDTO lists the dates a property cannot be booked for. It carries no guest data.
type CalendarDTO struct {
	PropertyID string         `json:"propertyId"`
	Booked     []DateRangeDTO `json:"booked"`
	Blocked    []DateRangeDTO `json:"blocked"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings     int64            `json:"totalBookings"`
	ByStatus          map[string]int64 `json:"byStatus"`
	ByPaymentStatus   map[string]int64 `json:"byPaymentStatus"`
	RevenueByCurrency map[string]int64 `json:"revenueByCurrency"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	guest := bk.Guest()
	return BookingDTO{
		ID:                bk.ID().String(),
		BookingReference:  bk.Reference(),
		PropertyID:        bk.PropertyID(),
		CheckIn:           bk.CheckIn().Format(daterange.DateLayout),
		CheckOut:          bk.CheckOut().Format(daterange.DateLayout),
		Nights:            bk.Nights(),
		GuestName:         guest.Name,
		GuestEmail:        guest.Email,
		GuestPhone:        guest.Phone,
		GuestCount:        guest.Count,
		BasePricePerNight: bk.BasePricePerNight(),
		CleaningFee:       bk.CleaningFee(),
		TaxAmount:         bk.TaxAmount(),
		Total:             bk.Total(),
		Currency:          bk.Currency(),
		Status:            string(bk.Status()),
		PaymentStatus:     string(bk.PaymentStatus()),
		PaymentMethod:     bk.PaymentMethod(),
		SpecialRequests:   bk.SpecialRequests(),
		ExpiresAt:         bk.ExpiresAt(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}

func toDateRangeDTO(r daterange.DateRange) DateRangeDTO {
	return DateRangeDTO{Start: r.Start.Format(daterange.DateLayout), End: r.End.Format(daterange.DateLayout)}
}
