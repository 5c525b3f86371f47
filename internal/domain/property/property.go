package property

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pyrecrest/service-booking/internal/common/domain"
)

// DefaultPropertyID is the identifier of the single property served when none are configured.
const DefaultPropertyID = "apartment-001"

// Property is a bookable unit and its commercial terms. Amounts are whole currency units.
type Property struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	NightlyRate int64  `json:"nightlyRate" mapstructure:"nightly_rate"`
	CleaningFee int64  `json:"cleaningFee" mapstructure:"cleaning_fee"`
	Currency    string `json:"currency" mapstructure:"currency"`
	MinimumStay int    `json:"minimumStay" mapstructure:"minimum_stay"`
	MinGuests   int    `json:"minGuests" mapstructure:"min_guests"`
	MaxGuests   int    `json:"maxGuests" mapstructure:"max_guests"`
}

// Default returns the single-property deployment's terms.
func Default() Property {
	return Property{
		ID:          DefaultPropertyID,
		Name:        "Pyrecrest Apartment",
		NightlyRate: 15000,
		CleaningFee: 5000,
		Currency:    domain.CurrencyNGN,
		MinimumStay: 2,
		MinGuests:   1,
		MaxGuests:   2,
	}
}

// Validate checks the property's terms are usable for pricing and booking.
func (p Property) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("property id is required")
	case p.NightlyRate <= 0:
		return fmt.Errorf("property %s: nightly rate must be positive", p.ID)
	case p.CleaningFee < 0:
		return fmt.Errorf("property %s: cleaning fee cannot be negative", p.ID)
	case !domain.IsSupportedCurrency(p.Currency):
		return fmt.Errorf("property %s: unsupported currency %q", p.ID, p.Currency)
	case p.MinimumStay < 1:
		return fmt.Errorf("property %s: minimum stay must be at least 1", p.ID)
	case p.MinGuests < 1 || p.MaxGuests < p.MinGuests:
		return fmt.Errorf("property %s: invalid guest range %d..%d", p.ID, p.MinGuests, p.MaxGuests)
	}
	return nil
}

// AllowsGuests reports whether n guests fit the property's configured range.
func (p Property) AllowsGuests(n int) bool {
	return n >= p.MinGuests && n <= p.MaxGuests
}

// Catalog looks up properties.
type Catalog interface {
	FindByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context) ([]Property, error)
}

// StaticCatalog is a Catalog over a fixed, configured list.
type StaticCatalog struct {
	byID map[string]Property
	ids  []string
}

// NewStaticCatalog validates the properties and builds a catalog. An empty list yields the
// default property.
func NewStaticCatalog(properties []Property) (*StaticCatalog, error) {
	if len(properties) == 0 {
		properties = []Property{Default()}
	}

	c := &StaticCatalog{byID: make(map[string]Property, len(properties))}
	for _, p := range properties {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate property id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.ids = append(c.ids, p.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// FindByID returns the property or a NotFoundError.
func (c *StaticCatalog) FindByID(_ context.Context, id string) (*Property, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("property", id)
	}
	return &p, nil
}

// List returns all properties ordered by id.
func (c *StaticCatalog) List(_ context.Context) ([]Property, error) {
	out := make([]Property, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out, nil
}
