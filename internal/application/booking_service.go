package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	blockedDomain "github.com/pyrecrest/service-booking/internal/domain/blocked"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
	"github.com/pyrecrest/service-booking/internal/domain/property"
	"github.com/pyrecrest/service-booking/internal/lock"
	"github.com/pyrecrest/service-booking/internal/notification"
)

const maxReferenceAttempts = 3

// BookingConfig holds the booking policy knobs.
type BookingConfig struct {
	HoldWindow         time.Duration
	TaxRateBasisPoints int64
	Location           *time.Location
	Bank               bookingDomain.BankDetails
	NewReference       bookingDomain.ReferenceGenerator
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo       bookingDomain.BookingRepository
	blocked    blockedDomain.Repository
	catalog    property.Catalog
	pricing    bookingDomain.PricingStrategy
	locker     lock.Locker
	dispatcher notification.Dispatcher
	clock      domain.Clock
	cfg        BookingConfig
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	blocked blockedDomain.Repository,
	catalog property.Catalog,
	pricing bookingDomain.PricingStrategy,
	locker lock.Locker,
	dispatcher notification.Dispatcher,
	clock domain.Clock,
	cfg BookingConfig,
	logger *zap.Logger,
) *BookingService {
	if cfg.NewReference == nil {
		cfg.NewReference = bookingDomain.GenerateReference
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &BookingService{
		repo:       repo,
		blocked:    blocked,
		catalog:    catalog,
		pricing:    pricing,
		locker:     locker,
		dispatcher: dispatcher,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateBooking validates the request, checks availability under the property lock, prices
// the stay and persists a pending_payment booking. Notification failures are reported in the
// result and never fail the call.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingCreatedDTO, error) {
	g := req.GuestDetails
	if anyBlank(req.PropertyID, req.CheckIn, req.CheckOut, g.Name, g.Email, g.Phone) || g.GuestCount == 0 {
		return nil, domain.NewValidationError(msgMissingField)
	}

	prop, err := s.findProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stay, err := s.validateStay(prop, req.CheckIn, req.CheckOut, now)
	if err != nil {
		return nil, err
	}
	if !prop.AllowsGuests(g.GuestCount) {
		return nil, domain.NewValidationError(fmt.Sprintf("guest count must be between %d and %d", prop.MinGuests, prop.MaxGuests))
	}
	if !IsValidEmail(g.Email) {
		return nil, domain.NewValidationError(msgInvalidEmail)
	}

	quote, err := s.quote(prop, stay)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, propertyLockKey(prop.ID))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, domain.NewConflictError(msgPropertyBusy)
		}
		return nil, fmt.Errorf("failed to lock property: %w", err)
	}
	bk, err := s.createLocked(ctx, prop, stay, quote, req, now)
	unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("reference", bk.Reference()),
		zap.String("property_id", bk.PropertyID()),
		zap.String("stay", bk.Stay().String()),
		zap.Int64("total", bk.Total()),
	)

	result := &BookingCreatedDTO{
		Success:          true,
		BookingID:        bk.ID().String(),
		BookingReference: bk.Reference(),
		BookingDetails:   toBookingDTO(bk),
		BankDetails:      s.cfg.Bank,
		EmailSent:        true,
	}
	if err := s.notify(ctx, notification.EventBookingCreated, bk); err != nil {
		result.EmailSent = false
		result.EmailError = err.Error()
	}
	return result, nil
}

func (s *BookingService) createLocked(
	ctx context.Context,
	prop *property.Property,
	stay daterange.DateRange,
	quote bookingDomain.Quote,
	req CreateBookingRequest,
	now time.Time,
) (*bookingDomain.Booking, error) {
	avail, err := s.availability(ctx, prop.ID, stay, true)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, domain.NewConflictError(avail.Reason)
	}

	g := req.GuestDetails
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref, err := s.cfg.NewReference(now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate reference: %w", err)
		}

		bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
			PropertyID: prop.ID,
			Stay:       stay,
			Guest: bookingDomain.Guest{
				Name:  strings.TrimSpace(g.Name),
				Email: strings.TrimSpace(g.Email),
				Phone: strings.TrimSpace(g.Phone),
				Count: g.GuestCount,
			},
			Quote:           quote,
			Currency:        prop.Currency,
			SpecialRequests: req.SpecialRequests,
			Reference:       ref,
			HoldWindow:      s.cfg.HoldWindow,
		}, now)
		if err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, bk)
		if err == nil {
			return bk, nil
		}
		if !errors.Is(err, bookingDomain.ErrDuplicateReference) {
			return nil, fmt.Errorf("failed to save booking: %w", err)
		}
		s.logger.Warn("booking reference collision, retrying",
			zap.String("reference", ref),
			zap.Int("attempt", attempt),
		)
	}
	return nil, domain.NewConflictError(msgBookingCollision)
}

// CheckAvailability reports whether a property is free for the requested stay. It is
// read-only: lapsed holds are ignored but left for the sweeper or the next write path.
func (s *BookingService) CheckAvailability(ctx context.Context, req StayRequest) (*AvailabilityDTO, error) {
	if anyBlank(req.PropertyID, req.CheckIn, req.CheckOut) {
		return nil, domain.NewValidationError(msgMissingField)
	}
	prop, err := s.findProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	stay, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	return s.availability(ctx, prop.ID, stay, false)
}

// availability checks bookings first, then blocked dates. Lapsed holds do not count. With
// persist set they are also expired in the store; otherwise the check writes nothing.
func (s *BookingService) availability(ctx context.Context, propertyID string, stay daterange.DateRange, persist bool) (*AvailabilityDTO, error) {
	bookings, err := s.activeBookings(ctx, propertyID, persist)
	if err != nil {
		return nil, err
	}
	for _, bk := range bookings {
		if bk.Stay().Overlaps(stay) {
			return &AvailabilityDTO{Available: false, Reason: msgDatesBooked}, nil
		}
	}

	blocks, err := s.blocked.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked dates: %w", err)
	}
	for _, b := range blocks {
		if b.Period().Overlaps(stay) {
			return &AvailabilityDTO{Available: false, Reason: msgDatesBlocked}, nil
		}
	}
	return &AvailabilityDTO{Available: true}, nil
}

// activeBookings returns the property's bookings that still hold their dates. Lapsed holds
// are reconciled when persist is set and skipped otherwise.
func (s *BookingService) activeBookings(ctx context.Context, propertyID string, persist bool) ([]*bookingDomain.Booking, error) {
	bookings, err := s.repo.FindActiveByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	now := s.clock.Now()
	active := bookings[:0]
	for _, bk := range bookings {
		if !persist {
			if bk.HoldsDates() && !bk.IsStale(now) {
				active = append(active, bk)
			}
			continue
		}
		bk, err = s.reconcile(ctx, bk)
		if err != nil {
			return nil, err
		}
		if bk.HoldsDates() {
			active = append(active, bk)
		}
	}
	return active, nil
}

// Quote prices a stay without booking it.
func (s *BookingService) Quote(ctx context.Context, req StayRequest) (*QuoteDTO, error) {
	if anyBlank(req.PropertyID, req.CheckIn, req.CheckOut) {
		return nil, domain.NewValidationError(msgMissingField)
	}
	prop, err := s.findProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	stay, err := s.validateStay(prop, req.CheckIn, req.CheckOut, s.clock.Now())
	if err != nil {
		return nil, err
	}
	q, err := s.quote(prop, stay)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{
		PropertyID:  prop.ID,
		CheckIn:     stay.Start.Format(daterange.DateLayout),
		CheckOut:    stay.End.Format(daterange.DateLayout),
		Nights:      q.Nights,
		NightlyRate: q.NightlyRate,
		RoomCharge:  q.RoomCharge,
		CleaningFee: q.CleaningFee,
		Subtotal:    q.Subtotal,
		Tax:         q.Tax,
		Total:       q.Total,
		Currency:    prop.Currency,
	}, nil
}

// UnavailableRanges lists the booked and blocked ranges of a property that intersect
// [from, to). Either bound may be empty. Like CheckAvailability it writes nothing.
func (s *BookingService) UnavailableRanges(ctx context.Context, propertyID, from, to string) (*CalendarDTO, error) {
	prop, err := s.catalog.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	window, err := calendarWindow(from, to)
	if err != nil {
		return nil, err
	}

	bookings, err := s.activeBookings(ctx, prop.ID, false)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocked.FindByProperty(ctx, prop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocked dates: %w", err)
	}

	cal := &CalendarDTO{PropertyID: prop.ID, Booked: []DateRangeDTO{}, Blocked: []DateRangeDTO{}}
	for _, bk := range bookings {
		if window.Overlaps(bk.Stay()) {
			cal.Booked = append(cal.Booked, toDateRangeDTO(bk.Stay()))
		}
	}
	for _, b := range blocks {
		if window.Overlaps(b.Period()) {
			cal.Blocked = append(cal.Blocked, toDateRangeDTO(b.Period()))
		}
	}
	sort.Slice(cal.Booked, func(i, j int) bool { return cal.Booked[i].Start < cal.Booked[j].Start })
	sort.Slice(cal.Blocked, func(i, j int) bool { return cal.Blocked[i].Start < cal.Blocked[j].Start })
	return cal, nil
}

func calendarWindow(from, to string) (daterange.DateRange, error) {
	window := daterange.DateRange{
		Start: time.Time{},
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if strings.TrimSpace(from) != "" {
		t, err := daterange.ParseDate(from)
		if err != nil {
			return window, domain.NewValidationError(msgInvalidDate)
		}
		window.Start = t
	}
	if strings.TrimSpace(to) != "" {
		t, err := daterange.ParseDate(to)
		if err != nil {
			return window, domain.NewValidationError(msgInvalidDate)
		}
		window.End = t
	}
	if window.IsEmpty() {
		return window, domain.NewValidationError("to must be after from")
	}
	return window, nil
}

// ListBookings returns every booking, newest first, with lapsed holds expired. A booking
// whose expiry cannot be persisted is still reported as expired.
func (s *BookingService) ListBookings(ctx context.Context) ([]BookingDTO, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, 0, len(bookings))
	for _, bk := range bookings {
		reconciled, err := s.reconcile(ctx, bk)
		if err != nil {
			s.logger.Error("failed to persist booking expiry",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			reconciled = bk
		}
		dtos = append(dtos, toBookingDTO(reconciled))
	}
	return dtos, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*BookingDTO, error) {
	bk, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// LookupBooking lets a guest read their booking by reference. The email must match the
// booking's guest; a mismatch is reported as not found.
func (s *BookingService) LookupBooking(ctx context.Context, reference, email string) (*BookingDTO, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if anyBlank(reference, email) {
		return nil, domain.NewValidationError(msgMissingField)
	}
	bk, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !bk.MatchesEmail(email) {
		return nil, domain.NewNotFoundError("booking", reference)
	}
	bk, err = s.reconcile(ctx, bk)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateStatus applies an admin status and/or payment status change through the
// transition guard. Re-applying the current values succeeds without a write.
func (s *BookingService) UpdateStatus(ctx context.Context, req UpdateBookingRequest) (*BookingDTO, error) {
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, domain.NewValidationError(msgNoUpdates)
	}

	var status *bookingDomain.BookingStatus
	if req.Status != nil {
		st, err := bookingDomain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		status = &st
	}
	var payment *bookingDomain.PaymentStatus
	if req.PaymentStatus != nil {
		ps, err := bookingDomain.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		payment = &ps
	}

	bk, err := s.findBooking(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	bk, err = s.transition(ctx, bk, status, payment)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmPayment confirms the booking with the given reference after a bank transfer of
// amount was received. Payments below the booking total are rejected.
func (s *BookingService) ConfirmPayment(ctx context.Context, reference string, amount int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		return nil, err
	}
	bk, err = s.reconcile(ctx, bk)
	if err != nil {
		return nil, err
	}
	if amount < bk.Total() {
		return nil, domain.NewValidationError(fmt.Sprintf("payment of %d is below booking total %d", amount, bk.Total()))
	}

	confirmed := bookingDomain.StatusConfirmed
	paid := bookingDomain.PaymentPaid
	bk, err = s.transition(ctx, bk, &confirmed, &paid)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

func (s *BookingService) transition(
	ctx context.Context,
	bk *bookingDomain.Booking,
	status *bookingDomain.BookingStatus,
	payment *bookingDomain.PaymentStatus,
) (*bookingDomain.Booking, error) {
	prevStatus := bk.Status()
	changed, err := bk.ApplyUpdate(status, payment, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return bk, nil
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking status updated",
		zap.String("booking_id", bk.ID().String()),
		zap.String("from", string(prevStatus)),
		zap.String("status", string(bk.Status())),
		zap.String("payment_status", string(bk.PaymentStatus())),
	)

	if bk.Status() != prevStatus {
		event := notification.EventBookingConfirmed
		if bk.Status() == bookingDomain.StatusCancelled {
			event = notification.EventBookingCancelled
			if bk.PaymentStatus() == bookingDomain.PaymentExpired {
				event = notification.EventBookingExpired
			}
		}
		s.notify(ctx, event, bk)
	}
	return bk, nil
}

// ExpirePending expires every lapsed pending_payment booking and returns how many changed.
func (s *BookingService) ExpirePending(ctx context.Context) (int, error) {
	pending, err := s.repo.FindByStatus(ctx, bookingDomain.StatusPendingPayment)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending bookings: %w", err)
	}

	now := s.clock.Now()
	expired := 0
	var errs []error
	for _, bk := range pending {
		if !bk.IsStale(now) {
			continue
		}
		reconciled, err := s.reconcile(ctx, bk)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if reconciled.PaymentStatus() == bookingDomain.PaymentExpired {
			expired++
		}
	}
	return expired, errors.Join(errs...)
}

// BookingStats returns aggregate booking statistics. Revenue counts paid bookings only.
func (s *BookingService) BookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	stats := &BookingStatsDTO{
		TotalBookings:     int64(len(bookings)),
		ByStatus:          make(map[string]int64),
		ByPaymentStatus:   make(map[string]int64),
		RevenueByCurrency: make(map[string]int64),
	}
	for _, bk := range bookings {
		stats.ByStatus[bk.Status]++
		stats.ByPaymentStatus[bk.PaymentStatus]++
		if bk.PaymentStatus == string(bookingDomain.PaymentPaid) {
			stats.RevenueByCurrency[bk.Currency] += bk.Total
		}
	}
	return stats, nil
}

// reconcile expires a lapsed hold and persists it. If a concurrent write got there first, the
// stored booking wins and is returned instead.
func (s *BookingService) reconcile(ctx context.Context, bk *bookingDomain.Booking) (*bookingDomain.Booking, error) {
	if !bk.ExpireIfStale(s.clock.Now()) {
		return bk, nil
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		if domain.IsConflict(err) {
			fresh, ferr := s.repo.FindByID(ctx, bk.ID())
			if ferr != nil {
				return nil, fmt.Errorf("failed to reload booking %s: %w", bk.ID(), ferr)
			}
			return fresh, nil
		}
		return nil, fmt.Errorf("failed to expire booking %s: %w", bk.ID(), err)
	}

	s.logger.Info("booking hold expired",
		zap.String("booking_id", bk.ID().String()),
		zap.String("reference", bk.Reference()),
	)
	s.notify(ctx, notification.EventBookingExpired, bk)
	return bk, nil
}

func (s *BookingService) findBooking(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.NewNotFoundError("booking", id)
	}
	bk, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, bk)
}

func (s *BookingService) findProperty(ctx context.Context, id string) (*property.Property, error) {
	prop, err := s.catalog.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError(msgUnknownProperty)
		}
		return nil, err
	}
	return prop, nil
}

// validateStay parses the dates and applies the booking window rules for prop.
func (s *BookingService) validateStay(prop *property.Property, checkIn, checkOut string, now time.Time) (daterange.DateRange, error) {
	start, err := daterange.ParseDate(checkIn)
	if err != nil {
		return daterange.DateRange{}, domain.NewValidationError(msgInvalidDate)
	}
	if start.Before(daterange.Today(now, s.cfg.Location)) {
		return daterange.DateRange{}, domain.NewValidationError(msgCheckInPast)
	}
	stay, err := parseStay(checkIn, checkOut)
	if err != nil {
		return daterange.DateRange{}, err
	}
	if stay.Nights() < prop.MinimumStay {
		return daterange.DateRange{}, domain.NewValidationError(fmt.Sprintf("%s: at least %d nights", msgMinimumStay, prop.MinimumStay))
	}
	return stay, nil
}

func (s *BookingService) quote(prop *property.Property, stay daterange.DateRange) (bookingDomain.Quote, error) {
	q, err := s.pricing.Calculate(bookingDomain.PricingParams{
		NightlyRate:        prop.NightlyRate,
		CleaningFee:        prop.CleaningFee,
		Nights:             stay.Nights(),
		TaxRateBasisPoints: s.cfg.TaxRateBasisPoints,
	})
	if err != nil {
		return bookingDomain.Quote{}, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}
	return q, nil
}

// notify hands the event to the dispatcher. Failures are logged and returned for callers
// that report them; they never undo the write.
func (s *BookingService) notify(ctx context.Context, event notification.Event, bk *bookingDomain.Booking) error {
	if err := s.dispatcher.Send(ctx, event, bk); err != nil {
		s.logger.Error("failed to send booking notification",
			zap.String("event", string(event)),
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func propertyLockKey(propertyID string) string {
	return "property:" + propertyID
}
