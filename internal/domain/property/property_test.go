package property

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrecrest/service-booking/internal/common/domain"
)

func TestNewStaticCatalog_DefaultsToSingleProperty(t *testing.T) {
	c, err := NewStaticCatalog(nil)
	require.NoError(t, err)

	p, err := c.FindByID(context.Background(), DefaultPropertyID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), p.NightlyRate)
	assert.Equal(t, int64(5000), p.CleaningFee)
	assert.Equal(t, 2, p.MinimumStay)
	assert.True(t, p.AllowsGuests(1))
	assert.True(t, p.AllowsGuests(2))
	assert.False(t, p.AllowsGuests(3))
	assert.False(t, p.AllowsGuests(0))
}

func TestNewStaticCatalog_RejectsInvalid(t *testing.T) {
	bad := Default()
	bad.MaxGuests = 0
	_, err := NewStaticCatalog([]Property{bad})
	assert.Error(t, err)

	_, err = NewStaticCatalog([]Property{Default(), Default()})
	assert.Error(t, err)

	bad = Default()
	bad.Currency = "EUR"
	_, err = NewStaticCatalog([]Property{bad})
	assert.Error(t, err)
}

func TestStaticCatalog_List(t *testing.T) {
	second := Default()
	second.ID = "apartment-000"
	c, err := NewStaticCatalog([]Property{Default(), second})
	require.NoError(t, err)

	list, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "apartment-000", list[0].ID)

	_, err = c.FindByID(context.Background(), "villa-9")
	assert.True(t, domain.IsNotFound(err))
}
