package tablestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

// bookingEntity is the stored shape of a booking row.
type bookingEntity struct {
	keys
	ID                string `json:"Id"`
	Reference         string `json:"Reference"`
	PropertyID        string `json:"PropertyId"`
	CheckIn           string `json:"CheckIn"`
	CheckOut          string `json:"CheckOut"`
	Nights            int    `json:"Nights"`
	GuestName         string `json:"GuestName"`
	GuestEmail        string `json:"GuestEmail"`
	GuestPhone        string `json:"GuestPhone"`
	GuestCount        int    `json:"GuestCount"`
	BasePricePerNight int64  `json:"BasePricePerNight"`
	CleaningFee       int64  `json:"CleaningFee"`
	TaxAmount         int64  `json:"TaxAmount"`
	Total             int64  `json:"Total"`
	Currency          string `json:"Currency"`
	Status            string `json:"Status"`
	PaymentStatus     string `json:"PaymentStatus"`
	PaymentMethod     string `json:"PaymentMethod"`
	SpecialRequests   string `json:"SpecialRequests"`
	ExpiresAt         string `json:"ExpiresAt,omitempty"`
	Version           int64  `json:"Version"`
	CreatedAt         string `json:"CreatedAt"`
	UpdatedAt         string `json:"UpdatedAt"`
}

type referenceEntity struct {
	keys
	BookingID string `json:"BookingId"`
}

// BookingRepository implements booking.BookingRepository on the table store.
type BookingRepository struct {
	client *aztables.Client
}

// FindByID reads the booking row directly by key.
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, _, err := r.get(ctx, id)
	return bk, err
}

// FindByReference resolves the reference row, then reads the booking.
func (r *BookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	resp, err := r.client.GetEntity(ctx, PartitionReference, reference, nil)
	if err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return nil, domain.NewNotFoundError("booking", reference)
		}
		return nil, fmt.Errorf("failed to read booking reference: %w", err)
	}

	var ref referenceEntity
	if err := json.Unmarshal(resp.Value, &ref); err != nil {
		return nil, fmt.Errorf("failed to decode booking reference: %w", err)
	}
	id, err := uuid.Parse(ref.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id on reference %s: %w", reference, err)
	}
	bk, _, err := r.get(ctx, id)
	return bk, err
}

// FindActiveByProperty filters server-side on property and status.
func (r *BookingRepository) FindActiveByProperty(ctx context.Context, propertyID string) ([]*bookingDomain.Booking, error) {
	filter := fmt.Sprintf("%s and PropertyId eq %s and (Status eq %s or Status eq %s)",
		partitionFilter(PartitionBooking), quote(propertyID),
		quote(string(bookingDomain.StatusPendingPayment)), quote(string(bookingDomain.StatusConfirmed)))

	bookings, err := r.list(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CheckIn().Before(bookings[j].CheckIn()) })
	return bookings, nil
}

// FindByStatus filters server-side on status.
func (r *BookingRepository) FindByStatus(ctx context.Context, status bookingDomain.BookingStatus) ([]*bookingDomain.Booking, error) {
	filter := fmt.Sprintf("%s and Status eq %s", partitionFilter(PartitionBooking), quote(string(status)))
	bookings, err := r.list(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by status: %w", err)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt().Before(bookings[j].CreatedAt()) })
	return bookings, nil
}

// ListAll returns every booking, newest first. The table has no server-side ordering.
func (r *BookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	bookings, err := r.list(ctx, partitionFilter(PartitionBooking))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt().After(bookings[j].CreatedAt()) })
	return bookings, nil
}

// Save reserves the reference with an insert that fails on conflict, then inserts the booking.
func (r *BookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	ref, err := json.Marshal(referenceEntity{
		keys:      keys{PartitionKey: PartitionReference, RowKey: bk.Reference()},
		BookingID: bk.ID().String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode booking reference: %w", err)
	}
	if _, err := r.client.AddEntity(ctx, ref, nil); err != nil {
		if hasStatus(err, http.StatusConflict) {
			return bookingDomain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to reserve booking reference: %w", err)
	}

	row, err := json.Marshal(toBookingEntity(bk))
	if err != nil {
		return fmt.Errorf("failed to encode booking: %w", err)
	}
	if _, err := r.client.AddEntity(ctx, row, nil); err != nil {
		_, _ = r.client.DeleteEntity(ctx, PartitionReference, bk.Reference(), nil)
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update replaces the row only if it is still at the previous version, guarded by its ETag.
func (r *BookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	current, etag, err := r.get(ctx, bk.ID())
	if err != nil {
		return err
	}
	if current.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	row, err := json.Marshal(toBookingEntity(bk))
	if err != nil {
		return fmt.Errorf("failed to encode booking: %w", err)
	}
	_, err = r.client.UpdateEntity(ctx, row, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		if hasStatus(err, http.StatusPreconditionFailed) {
			return domain.NewConflictError("booking was modified by another transaction")
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) get(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, azcore.ETag, error) {
	resp, err := r.client.GetEntity(ctx, PartitionBooking, id.String(), nil)
	if err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return nil, "", domain.NewNotFoundError("booking", id.String())
		}
		return nil, "", fmt.Errorf("failed to find booking by ID: %w", err)
	}
	bk, err := decodeBooking(resp.Value)
	if err != nil {
		return nil, "", err
	}
	return bk, resp.ETag, nil
}

func (r *BookingRepository) list(ctx context.Context, filter string) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	err := query(ctx, r.client, filter, func(raw []byte) error {
		bk, err := decodeBooking(raw)
		if err != nil {
			return err
		}
		out = append(out, bk)
		return nil
	})
	return out, err
}

func toBookingEntity(bk *bookingDomain.Booking) bookingEntity {
	guest := bk.Guest()
	e := bookingEntity{
		keys:              keys{PartitionKey: PartitionBooking, RowKey: bk.ID().String()},
		ID:                bk.ID().String(),
		Reference:         bk.Reference(),
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
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:         bk.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
	if exp := bk.ExpiresAt(); exp != nil {
		e.ExpiresAt = exp.UTC().Format(time.RFC3339Nano)
	}
	return e
}

func decodeBooking(raw []byte) (*bookingDomain.Booking, error) {
	var e bookingEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode booking: %w", err)
	}

	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id %q: %w", e.ID, err)
	}
	checkIn, err := daterange.ParseDate(e.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := daterange.ParseDate(e.CheckOut)
	if err != nil {
		return nil, err
	}
	status, err := bookingDomain.ParseBookingStatus(e.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(e.PaymentStatus)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt on booking %s: %w", e.ID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, e.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}
	var expiresAt *time.Time
	if e.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339Nano, e.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expiresAt on booking %s: %w", e.ID, err)
		}
		expiresAt = &t
	}

	return bookingDomain.ReconstructBooking(
		id,
		e.Reference,
		e.PropertyID,
		daterange.New(checkIn, checkOut),
		e.Nights,
		bookingDomain.Guest{Name: e.GuestName, Email: e.GuestEmail, Phone: e.GuestPhone, Count: e.GuestCount},
		e.BasePricePerNight,
		e.CleaningFee,
		e.TaxAmount,
		e.Total,
		e.Currency,
		status,
		paymentStatus,
		e.PaymentMethod,
		e.SpecialRequests,
		expiresAt,
		e.Version,
		createdAt,
		updatedAt,
	), nil
}
