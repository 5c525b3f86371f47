package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrecrest/service-booking/internal/common/domain"
	bookingDomain "github.com/pyrecrest/service-booking/internal/domain/booking"
	"github.com/pyrecrest/service-booking/internal/domain/daterange"
)

func newBooking(t *testing.T, ref string, createdAt time.Time) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
		PropertyID: "apartment-001",
		Stay: daterange.New(
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		),
		Guest:      bookingDomain.Guest{Name: "Ada", Email: "ada@example.com", Count: 1},
		Quote:      bookingDomain.Quote{Total: 50000},
		Reference:  ref,
		HoldWindow: time.Hour,
	}, createdAt)
	require.NoError(t, err)
	return bk
}

func TestBookingRepository_DuplicateReference(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, newBooking(t, "PRC-20250601-AAAAAA", now)))
	err := repo.Save(ctx, newBooking(t, "PRC-20250601-AAAAAA", now))
	assert.ErrorIs(t, err, bookingDomain.ErrDuplicateReference)
}

func TestBookingRepository_OptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	bk := newBooking(t, "PRC-20250601-AAAAAA", time.Now())
	require.NoError(t, repo.Save(ctx, bk))

	first, err := repo.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, bk.ID())
	require.NoError(t, err)

	confirmed := bookingDomain.StatusConfirmed
	_, err = first.ApplyUpdate(&confirmed, nil, time.Now())
	require.NoError(t, err)
	first.IncrementVersion()
	require.NoError(t, repo.Update(ctx, first))

	second.ExpireIfStale(time.Now().Add(2 * time.Hour))
	second.IncrementVersion()
	err = repo.Update(ctx, second)
	assert.True(t, domain.IsConflict(err))

	stored, err := repo.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusConfirmed, stored.Status())
}

func TestBookingRepository_ListAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newBooking(t, "PRC-20250501-AAAAAA", base)))
	require.NoError(t, repo.Save(ctx, newBooking(t, "PRC-20250501-BBBBBB", base.Add(time.Hour))))

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "PRC-20250501-BBBBBB", list[0].Reference())
}

func TestBookingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	bk := newBooking(t, "PRC-20250601-AAAAAA", time.Now())
	require.NoError(t, repo.Save(ctx, bk))

	bk.ExpireIfStale(time.Now().Add(2 * time.Hour))

	stored, err := repo.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusPendingPayment, stored.Status())
}
