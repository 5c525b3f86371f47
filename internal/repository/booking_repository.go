package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference         string     `gorm:"uniqueIndex;not null;size:24"`
	PropertyID        string     `gorm:"not null;size:64;index:idx_bookings_property_status"`
	CheckIn           time.Time  `gorm:"type:date;not null"`
	CheckOut          time.Time  `gorm:"type:date;not null"`
	Nights            int        `gorm:"not null"`
	GuestName         string     `gorm:"not null;size:200"`
	GuestEmail        string     `gorm:"not null;size:320"`
	GuestPhone        string     `gorm:"size:40"`
	GuestCount        int        `gorm:"not null"`
	BasePricePerNight int64      `gorm:"not null"`
	CleaningFee       int64      `gorm:"not null"`
	TaxAmount         int64      `gorm:"not null;default:0"`
	Total             int64      `gorm:"not null"`
	Currency          string     `gorm:"not null;size:3;default:'NGN'"`
	Status            string     `gorm:"not null;size:30;index:idx_bookings_property_status"`
	PaymentStatus     string     `gorm:"not null;size:20"`
	PaymentMethod     string     `gorm:"not null;size:30"`
	SpecialRequests   string     `gorm:"size:2000"`
	ExpiresAt         *time.Time `gorm:""`
	Version           int64      `gorm:"not null;default:1"`
	CreatedAt         time.Time  `gorm:"not null;index"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its reference.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// FindActiveByProperty retrieves the bookings holding dates on a property.
func (r *GormBookingRepository) FindActiveByProperty(ctx context.Context, propertyID string) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND status IN ?", propertyID, statusStrings(bookingDomain.ActiveStatuses())).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByStatus retrieves every booking in a status.
func (r *GormBookingRepository) FindByStatus(ctx context.Context, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by status: %w", err)
	}
	return toDomainBookings(models)
}

// ListAll retrieves all bookings, newest first.
func (r *GormBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return bookingDomain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"payment_status":   model.PaymentStatus,
			"special_requests": model.SpecialRequests,
			"expires_at":       model.ExpiresAt,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	guest := bk.Guest()
	return &BookingModel{
		ID:                bk.ID(),
		Reference:         bk.Reference(),
		PropertyID:        bk.PropertyID(),
		CheckIn:           bk.CheckIn(),
		CheckOut:          bk.CheckOut(),
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.Reference,
		m.PropertyID,
		daterange.New(m.CheckIn, m.CheckOut),
		m.Nights,
		bookingDomain.Guest{
			Name:  m.GuestName,
			Email: m.GuestEmail,
			Phone: m.GuestPhone,
			Count: m.GuestCount,
		},
		m.BasePricePerNight,
		m.CleaningFee,
		m.TaxAmount,
		m.Total,
		m.Currency,
		status,
		paymentStatus,
		m.PaymentMethod,
		m.SpecialRequests,
		m.ExpiresAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func statusStrings(statuses []bookingDomain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
