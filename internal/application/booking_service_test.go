package application

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
	"github.com/pyrecrest/service-booking/internal/domain/property"
	"github.com/pyrecrest/service-booking/internal/lock"
	"github.com/pyrecrest/service-booking/internal/notification"
	"github.com/pyrecrest/service-booking/internal/repository/memory"
)

type sentEvent struct {
	event     notification.Event
	reference string
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (d *recordingDispatcher) Send(_ context.Context, event notification.Event, bk *bookingDomain.Booking) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, sentEvent{event: event, reference: bk.Reference()})
	return d.err
}

func (d *recordingDispatcher) sent() []notification.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notification.Event, len(d.events))
	for i, e := range d.events {
		out[i] = e.event
	}
	return out
}

type bookingFixture struct {
	svc        *BookingService
	repo       *memory.BookingRepository
	blocked    *memory.BlockedDateRepository
	dispatcher *recordingDispatcher
	clock      *domain.FixedClock
}

var testBank = bookingDomain.BankDetails{
	AccountName:   "Pyrecrest Limited",
	AccountNumber: "1234567890",
	BankName:      "GTBank",
}

func newBookingFixture(t *testing.T, opts ...func(*BookingConfig)) *bookingFixture {
	t.Helper()
	catalog, err := property.NewStaticCatalog(nil)
	require.NoError(t, err)

	cfg := BookingConfig{HoldWindow: 24 * time.Hour, Bank: testBank}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &bookingFixture{
		repo:       memory.NewBookingRepository(),
		blocked:    memory.NewBlockedDateRepository(),
		dispatcher: &recordingDispatcher{},
		clock:      &domain.FixedClock{T: time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)},
	}
	f.svc = NewBookingService(
		f.repo, f.blocked, catalog, bookingDomain.NewNightlyRatePricing(),
		lock.NewLocalLocker(), f.dispatcher, f.clock, cfg, zap.NewNop(),
	)
	return f
}

func bookingRequest(checkIn, checkOut string) CreateBookingRequest {
	return CreateBookingRequest{
		PropertyID: property.DefaultPropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestDetails: GuestDetailsRequest{
			Name:       "Ada Obi",
			Email:      "ada@example.com",
			Phone:      "+2348000000000",
			GuestCount: 2,
		},
	}
}

func (f *bookingFixture) create(t *testing.T, checkIn, checkOut string) *BookingCreatedDTO {
	t.Helper()
	res, err := f.svc.CreateBooking(context.Background(), bookingRequest(checkIn, checkOut))
	require.NoError(t, err)
	return res
}

func strPtr(s string) *string { return &s }

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)

	res := f.create(t, "2025-06-01", "2025-06-05")

	assert.True(t, res.Success)
	assert.Regexp(t, regexp.MustCompile(`^PRC-20250520-[A-Z0-9]{6}$`), res.BookingReference)
	assert.Equal(t, testBank, res.BankDetails)
	assert.True(t, res.EmailSent)
	assert.Empty(t, res.EmailError)

	d := res.BookingDetails
	assert.Equal(t, res.BookingID, d.ID)
	assert.Equal(t, 4, d.Nights)
	assert.Equal(t, int64(15000), d.BasePricePerNight)
	assert.Equal(t, int64(5000), d.CleaningFee)
	assert.Equal(t, int64(65000), d.Total)
	assert.Equal(t, "NGN", d.Currency)
	assert.Equal(t, "pending_payment", d.Status)
	assert.Equal(t, "pending", d.PaymentStatus)
	assert.Equal(t, "bank_transfer", d.PaymentMethod)
	require.NotNil(t, d.ExpiresAt)
	assert.Equal(t, f.clock.T.Add(24*time.Hour), *d.ExpiresAt)

	stored, err := f.repo.FindByReference(context.Background(), res.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPendingPayment, stored.Status())
	assert.Equal(t, []notification.Event{notification.EventBookingCreated}, f.dispatcher.sent())
}

func TestCreateBooking_WithTax(t *testing.T) {
	f := newBookingFixture(t, func(c *BookingConfig) { c.TaxRateBasisPoints = 750 })

	res := f.create(t, "2025-06-01", "2025-06-04")

	assert.Equal(t, int64(3750), res.BookingDetails.TaxAmount)
	assert.Equal(t, int64(53750), res.BookingDetails.Total)
}

func TestCreateBooking_NotificationFailureIsAdvisory(t *testing.T) {
	f := newBookingFixture(t)
	f.dispatcher.err = errors.New("sendgrid unavailable")

	res := f.create(t, "2025-06-01", "2025-06-05")

	assert.True(t, res.Success)
	assert.False(t, res.EmailSent)
	assert.Contains(t, res.EmailError, "sendgrid unavailable")

	_, err := f.repo.FindByReference(context.Background(), res.BookingReference)
	assert.NoError(t, err, "booking persisted despite the failed notification")
}

func TestCreateBooking_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateBookingRequest)
		message string
	}{
		{"missing name", func(r *CreateBookingRequest) { r.GuestDetails.Name = " " }, "missing required field"},
		{"missing check-in", func(r *CreateBookingRequest) { r.CheckIn = "" }, "missing required field"},
		{"missing guest count", func(r *CreateBookingRequest) { r.GuestDetails.GuestCount = 0 }, "missing required field"},
		{"unknown property", func(r *CreateBookingRequest) { r.PropertyID = "villa-9" }, "unknown property"},
		{"bad date", func(r *CreateBookingRequest) { r.CheckIn = "01/06/2025" }, "invalid date: expected YYYY-MM-DD"},
		{"check-in in the past", func(r *CreateBookingRequest) { r.CheckIn, r.CheckOut = "2025-05-19", "2025-05-22" }, "check-in in the past"},
		{"check-out before check-in", func(r *CreateBookingRequest) { r.CheckOut = "2025-05-30" }, "check-out must be after check-in"},
		{"same day", func(r *CreateBookingRequest) { r.CheckOut = r.CheckIn }, "check-out must be after check-in"},
		{"one night", func(r *CreateBookingRequest) { r.CheckOut = "2025-06-02" }, "minimum stay not met: at least 2 nights"},
		{"too many guests", func(r *CreateBookingRequest) { r.GuestDetails.GuestCount = 3 }, "guest count must be between 1 and 2"},
		{"negative guests", func(r *CreateBookingRequest) { r.GuestDetails.GuestCount = -1 }, "guest count must be between 1 and 2"},
		{"bad email", func(r *CreateBookingRequest) { r.GuestDetails.Email = "ada.example.com" }, "invalid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			req := bookingRequest("2025-06-01", "2025-06-05")
			tt.mutate(&req)

			_, err := f.svc.CreateBooking(context.Background(), req)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.message, vErr.Message)
			assert.Empty(t, f.dispatcher.sent())
		})
	}
}

func TestCreateBooking_CheckInToday(t *testing.T) {
	f := newBookingFixture(t)

	res := f.create(t, "2025-05-20", "2025-05-22")

	assert.Equal(t, "2025-05-20", res.BookingDetails.CheckIn)
}

func TestCreateBooking_TodayFollowsConfiguredTimezone(t *testing.T) {
	lagos := time.FixedZone("WAT", 60*60)
	f := newBookingFixture(t, func(c *BookingConfig) { c.Location = lagos })
	f.clock.T = time.Date(2025, 5, 20, 23, 30, 0, 0, time.UTC) // 21 May in Lagos

	_, err := f.svc.CreateBooking(context.Background(), bookingRequest("2025-05-20", "2025-05-23"))

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "check-in in the past", vErr.Message)
}

func TestCreateBooking_OverlapRejected(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, "2025-06-01", "2025-06-05")

	_, err := f.svc.CreateBooking(context.Background(), bookingRequest("2025-06-03", "2025-06-06"))

	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "dates already booked", cErr.Message)
}

func TestCreateBooking_TouchingStaysAllowed(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, "2025-06-01", "2025-06-05")

	res := f.create(t, "2025-06-05", "2025-06-07")
	assert.Equal(t, "2025-06-05", res.BookingDetails.CheckIn)

	res = f.create(t, "2025-05-29", "2025-06-01")
	assert.Equal(t, "2025-06-01", res.BookingDetails.CheckOut)
}

func TestCreateBooking_BlockedDatesRejected(t *testing.T) {
	f := newBookingFixture(t)
	block, err := blockedDomain.NewBlockedDate(property.DefaultPropertyID, daterange.New(
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	), "maintenance", "admin@pyrecrest.com", f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.blocked.Save(context.Background(), block))

	_, err = f.svc.CreateBooking(context.Background(), bookingRequest("2025-06-08", "2025-06-11"))

	var cErr *domain.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "dates blocked", cErr.Message)

	f.create(t, "2025-06-12", "2025-06-14")
}

func TestCreateBooking_CancelledBookingFreesDates(t *testing.T) {
	f := newBookingFixture(t)
	first := f.create(t, "2025-06-01", "2025-06-05")

	_, err := f.svc.UpdateStatus(context.Background(), UpdateBookingRequest{ID: first.BookingID, Status: strPtr("cancelled")})
	require.NoError(t, err)

	f.create(t, "2025-06-01", "2025-06-05")
}

func TestCreateBooking_LapsedHoldFreesDates(t *testing.T) {
	f := newBookingFixture(t)
	first := f.create(t, "2025-06-01", "2025-06-05")

	f.clock.Advance(24*time.Hour + time.Second)
	second := f.create(t, "2025-06-02", "2025-06-04")
	assert.NotEqual(t, first.BookingID, second.BookingID)

	old, err := f.svc.GetBooking(context.Background(), first.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", old.Status)
	assert.Equal(t, "expired", old.PaymentStatus)
}

func TestCreateBooking_ConcurrentRequestsForSameDates(t *testing.T) {
	f := newBookingFixture(t)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateBooking(context.Background(), bookingRequest("2025-06-01", "2025-06-05"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.IsConflict(err):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	all, err := f.repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateBooking_RetriesReferenceCollision(t *testing.T) {
	refs := []string{"PRC-20250520-AAAAAA", "PRC-20250520-AAAAAA", "PRC-20250520-BBBBBB"}
	var calls int
	f := newBookingFixture(t, func(c *BookingConfig) {
		c.NewReference = func(time.Time) (string, error) {
			ref := refs[calls]
			calls++
			return ref, nil
		}
	})

	first := f.create(t, "2025-06-01", "2025-06-05")
	second := f.create(t, "2025-06-10", "2025-06-12")

	assert.Equal(t, "PRC-20250520-AAAAAA", first.BookingReference)
	assert.Equal(t, "PRC-20250520-BBBBBB", second.BookingReference)
	assert.Equal(t, 3, calls)
}

func TestCreateBooking_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newBookingFixture(t, func(c *BookingConfig) {
		c.NewReference = func(time.Time) (string, error) { return "PRC-20250520-AAAAAA", nil }
	})
	f.create(t, "2025-06-01", "2025-06-05")

	_, err := f.svc.CreateBooking(context.Background(), bookingRequest("2025-06-10", "2025-06-12"))
	assert.True(t, domain.IsConflict(err))
}

func TestCheckAvailability(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()

	res, err := f.svc.CheckAvailability(ctx, StayRequest{PropertyID: "apartment-001", CheckIn: "2025-06-04", CheckOut: "2025-06-06"})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, "dates already booked", res.Reason)

	res, err = f.svc.CheckAvailability(ctx, StayRequest{PropertyID: "apartment-001", CheckIn: "2025-06-05", CheckOut: "2025-06-06"})
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Reason)

	_, err = f.svc.CheckAvailability(ctx, StayRequest{PropertyID: "apartment-001", CheckIn: "2025-06-06", CheckOut: "2025-06-05"})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.CheckAvailability(ctx, StayRequest{PropertyID: "apartment-001"})
	assert.True(t, domain.IsValidation(err))
}

func TestCheckAvailability_LapsedHoldIsReadOnly(t *testing.T) {
	f := newBookingFixture(t)
	created := f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()

	f.clock.Advance(25 * time.Hour)

	res, err := f.svc.CheckAvailability(ctx, StayRequest{PropertyID: "apartment-001", CheckIn: "2025-06-02", CheckOut: "2025-06-04"})
	require.NoError(t, err)
	assert.True(t, res.Available, "a lapsed hold does not block")

	cal, err := f.svc.UnavailableRanges(ctx, "apartment-001", "", "")
	require.NoError(t, err)
	assert.Empty(t, cal.Booked)

	stored, err := f.repo.FindByReference(ctx, created.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPendingPayment, stored.Status())
	assert.Equal(t, bookingDomain.PaymentPending, stored.PaymentStatus())
	assert.Equal(t, int64(1), stored.Version())
	assert.Equal(t, []notification.Event{notification.EventBookingCreated}, f.dispatcher.sent())
}

func TestQuote(t *testing.T) {
	f := newBookingFixture(t, func(c *BookingConfig) { c.TaxRateBasisPoints = 750 })

	q, err := f.svc.Quote(context.Background(), StayRequest{PropertyID: "apartment-001", CheckIn: "2025-06-01", CheckOut: "2025-06-04"})
	require.NoError(t, err)

	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, int64(45000), q.RoomCharge)
	assert.Equal(t, int64(50000), q.Subtotal)
	assert.Equal(t, int64(3750), q.Tax)
	assert.Equal(t, int64(53750), q.Total)
	assert.Equal(t, "NGN", q.Currency)

	all, err := f.repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "quoting does not book")
}

func TestUnavailableRanges(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, "2025-07-01", "2025-07-04")
	f.create(t, "2025-06-01", "2025-06-05")
	block, err := blockedDomain.NewBlockedDate(property.DefaultPropertyID, daterange.New(
		time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
	), "owner stay", "admin@pyrecrest.com", f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.blocked.Save(context.Background(), block))

	cal, err := f.svc.UnavailableRanges(context.Background(), "apartment-001", "", "")
	require.NoError(t, err)
	assert.Equal(t, []DateRangeDTO{{"2025-06-01", "2025-06-05"}, {"2025-07-01", "2025-07-04"}}, cal.Booked)
	assert.Equal(t, []DateRangeDTO{{"2025-06-20", "2025-06-22"}}, cal.Blocked)

	cal, err = f.svc.UnavailableRanges(context.Background(), "apartment-001", "2025-06-05", "2025-06-30")
	require.NoError(t, err)
	assert.Empty(t, cal.Booked)
	assert.Len(t, cal.Blocked, 1)

	_, err = f.svc.UnavailableRanges(context.Background(), "villa-9", "", "")
	assert.True(t, domain.IsNotFound(err))
}

func TestListBookings_NewestFirstAndReconciled(t *testing.T) {
	f := newBookingFixture(t)
	first := f.create(t, "2025-06-01", "2025-06-05")
	f.clock.Advance(time.Hour)
	second := f.create(t, "2025-06-10", "2025-06-12")

	f.clock.Advance(23*time.Hour + time.Minute)
	list, err := f.svc.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, second.BookingID, list[0].ID)
	assert.Equal(t, "pending_payment", list[0].Status)
	assert.Equal(t, first.BookingID, list[1].ID)
	assert.Equal(t, "cancelled", list[1].Status)
	assert.Equal(t, "expired", list[1].PaymentStatus)

	stored, err := f.repo.FindByReference(context.Background(), first.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCancelled, stored.Status(), "expiry is persisted")
	assert.Contains(t, f.dispatcher.sent(), notification.EventBookingExpired)
}

func TestListBookings_LegacyRowWithoutExpiryStaysPending(t *testing.T) {
	f := newBookingFixture(t, func(c *BookingConfig) { c.HoldWindow = 0 })
	res := f.create(t, "2025-06-01", "2025-06-05")
	assert.Nil(t, res.BookingDetails.ExpiresAt)

	f.clock.Advance(30 * 24 * time.Hour)
	list, err := f.svc.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pending_payment", list[0].Status)
}

func TestGetBooking(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")

	got, err := f.svc.GetBooking(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, res.BookingReference, got.BookingReference)

	_, err = f.svc.GetBooking(context.Background(), "not-a-uuid")
	assert.True(t, domain.IsNotFound(err))
}

func TestLookupBooking(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()

	got, err := f.svc.LookupBooking(ctx, res.BookingReference, "  ADA@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, res.BookingID, got.ID)

	_, err = f.svc.LookupBooking(ctx, res.BookingReference, "someone@example.com")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.LookupBooking(ctx, "PRC-20250101-ZZZZZZ", "ada@example.com")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.LookupBooking(ctx, "", "ada@example.com")
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateStatus_Confirm(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")

	got, err := f.svc.UpdateStatus(context.Background(), UpdateBookingRequest{ID: res.BookingID, Status: strPtr("confirmed")})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, "paid", got.PaymentStatus)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, []notification.Event{notification.EventBookingCreated, notification.EventBookingConfirmed}, f.dispatcher.sent())
}

func TestUpdateStatus_PaidConfirms(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")

	got, err := f.svc.UpdateStatus(context.Background(), UpdateBookingRequest{ID: res.BookingID, PaymentStatus: strPtr("paid")})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
}

func TestUpdateStatus_ReapplyIsNoop(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()
	req := UpdateBookingRequest{ID: res.BookingID, Status: strPtr("confirmed")}

	_, err := f.svc.UpdateStatus(ctx, req)
	require.NoError(t, err)
	got, err := f.svc.UpdateStatus(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, int64(2), got.Version, "no second write")
	assert.Len(t, f.dispatcher.sent(), 2)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: res.BookingID})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "no updates provided", vErr.Message)

	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: res.BookingID, Status: strPtr("checked_in")})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: res.BookingID, PaymentStatus: strPtr("refunded")})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: "7b0a3c2e-0000-4000-8000-000000000000", Status: strPtr("confirmed")})
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: res.BookingID, Status: strPtr("cancelled")})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: res.BookingID, Status: strPtr("confirmed")})
	var sErr *domain.InvalidStateError
	require.ErrorAs(t, err, &sErr)
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateStatus_LapsedHoldCannotBeConfirmed(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")
	f.clock.Advance(25 * time.Hour)

	_, err := f.svc.UpdateStatus(context.Background(), UpdateBookingRequest{ID: res.BookingID, Status: strPtr("confirmed")})
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateStatus_PendingRejectsClosedPayment(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()

	for _, p := range []string{"paid", "expired"} {
		_, err := f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: res.BookingID, Status: strPtr("pending_payment"), PaymentStatus: strPtr(p)})
		assert.True(t, domain.IsValidation(err), "payment %s: got %v", p, err)
	}

	stored, err := f.repo.FindByReference(ctx, res.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.PaymentPending, stored.PaymentStatus())
	assert.Equal(t, int64(1), stored.Version())
}

func TestExpirePending_FailedPaymentLapses(t *testing.T) {
	f := newBookingFixture(t)
	failed := f.create(t, "2025-06-01", "2025-06-05")
	paid := f.create(t, "2025-06-10", "2025-06-12")
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: failed.BookingID, PaymentStatus: strPtr("failed")})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: paid.BookingID, PaymentStatus: strPtr("paid")})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	n, err := f.svc.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetBooking(ctx, failed.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, "expired", got.PaymentStatus)

	got, err = f.svc.GetBooking(ctx, paid.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, "paid", got.PaymentStatus)
}

func TestConfirmPayment(t *testing.T) {
	f := newBookingFixture(t)
	res := f.create(t, "2025-06-01", "2025-06-05")
	ctx := context.Background()

	_, err := f.svc.ConfirmPayment(ctx, res.BookingReference, 60000)
	assert.True(t, domain.IsValidation(err))

	got, err := f.svc.ConfirmPayment(ctx, res.BookingReference, 65000)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, "paid", got.PaymentStatus)

	got, err = f.svc.ConfirmPayment(ctx, res.BookingReference, 65000)
	require.NoError(t, err, "a redelivered payment is a no-op")
	assert.Equal(t, int64(2), got.Version)
}

func TestExpirePending(t *testing.T) {
	f := newBookingFixture(t)
	f.create(t, "2025-06-01", "2025-06-05")
	f.clock.Advance(12 * time.Hour)
	f.create(t, "2025-06-10", "2025-06-12")
	confirmed := f.create(t, "2025-06-20", "2025-06-22")
	_, err := f.svc.UpdateStatus(context.Background(), UpdateBookingRequest{ID: confirmed.BookingID, Status: strPtr("confirmed")})
	require.NoError(t, err)

	f.clock.Advance(13 * time.Hour)
	n, err := f.svc.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.svc.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBookingStats(t *testing.T) {
	f := newBookingFixture(t)
	a := f.create(t, "2025-06-01", "2025-06-05")
	f.create(t, "2025-06-10", "2025-06-12")
	c := f.create(t, "2025-06-20", "2025-06-22")
	ctx := context.Background()
	_, err := f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: a.BookingID, Status: strPtr("confirmed")})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, UpdateBookingRequest{ID: c.BookingID, Status: strPtr("cancelled")})
	require.NoError(t, err)

	stats, err := f.svc.BookingStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])
	assert.Equal(t, int64(1), stats.ByStatus["pending_payment"])
	assert.Equal(t, int64(1), stats.ByStatus["cancelled"])
	assert.Equal(t, int64(1), stats.ByPaymentStatus["paid"])
	assert.Equal(t, map[string]int64{"NGN": 65000}, stats.RevenueByCurrency)
}
