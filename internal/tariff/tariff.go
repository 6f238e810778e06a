// Package tariff holds the seasonal tariff tables and resolves the price band
// and long-stay discount that apply to a booking.
package tariff

import (
	"fmt"
	"sort"

	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
)

// Band is the nightly price for a party of up to People guests.
type Band struct {
	People        int   `json:"people" yaml:"people"`
	PricePerNight int64 `json:"pricePerNight" yaml:"pricePerNight"` // whole pesos
}

// PriceCents returns the nightly price in cents.
func (b Band) PriceCents() money.Cents {
	return money.FromPesos(b.PricePerNight)
}

// LongStayDiscount grants DiscountPercent off stays of at least MinNights.
type LongStayDiscount struct {
	MinNights       int `json:"minNights" yaml:"minNights"`
	DiscountPercent int `json:"discountPercent" yaml:"discountPercent"`
}

// Table is one season's tariff: price bands by party size and long-stay
// discount thresholds.
type Table struct {
	PeopleBands       []Band             `json:"peopleBands" yaml:"peopleBands"`
	LongStayDiscounts []LongStayDiscount `json:"longStayDiscounts" yaml:"longStayDiscounts"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	return Table{
		PeopleBands:       cloneBands(t.PeopleBands),
		LongStayDiscounts: cloneDiscounts(t.LongStayDiscounts),
	}
}

// Validate reports the first entry that cannot be priced.
func (t Table) Validate() error {
	return validateEntries(t.PeopleBands, t.LongStayDiscounts)
}

// PickBandForPeople selects the band for a party size. An exact match wins;
// otherwise the smallest band that fits the party; otherwise the largest band.
// It returns false for non-positive party sizes or a table without bands.
func PickBandForPeople(table Table, people int) (Band, bool) {
	if people <= 0 || len(table.PeopleBands) == 0 {
		return Band{}, false
	}

	bands := cloneBands(table.PeopleBands)
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].People < bands[j].People
	})

	for _, b := range bands {
		if b.People == people {
			return b, true
		}
	}
	for _, b := range bands {
		if b.People >= people {
			return b, true
		}
	}
	return bands[len(bands)-1], true
}

// PickLongStayDiscount returns the discount percent of the highest threshold
// the stay reaches. It returns false when no threshold qualifies.
func PickLongStayDiscount(table Table, nights int) (int, bool) {
	if nights <= 0 || len(table.LongStayDiscounts) == 0 {
		return 0, false
	}

	thresholds := cloneDiscounts(table.LongStayDiscounts)
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].MinNights > thresholds[j].MinNights
	})

	for _, d := range thresholds {
		if nights >= d.MinNights {
			return d.DiscountPercent, true
		}
	}
	return 0, false
}

// DiscountOptions lists the discount percentages an operator can pick: every
// positive long-stay discount in the table plus the baseline options,
// deduplicated and ascending.
func DiscountOptions(table Table) []int {
	seen := make(map[int]struct{})
	options := make([]int, 0, len(table.LongStayDiscounts)+len(constants.BaselineDiscountPercents))

	add := func(p int) {
		if p <= 0 {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		options = append(options, p)
	}

	for _, d := range table.LongStayDiscounts {
		add(d.DiscountPercent)
	}
	for _, p := range constants.BaselineDiscountPercents {
		add(p)
	}

	sort.Ints(options)
	return options
}

func validateEntries(bands []Band, discounts []LongStayDiscount) error {
	for i, b := range bands {
		if b.People <= 0 {
			return fmt.Errorf("band %d: people must be positive, got %d", i, b.People)
		}
		if b.PricePerNight < 0 {
			return fmt.Errorf("band %d: price per night cannot be negative, got %d", i, b.PricePerNight)
		}
	}
	for i, d := range discounts {
		if d.MinNights <= 0 {
			return fmt.Errorf("long-stay discount %d: minimum nights must be positive, got %d", i, d.MinNights)
		}
		if d.DiscountPercent < 0 || d.DiscountPercent >= 100 {
			return fmt.Errorf("long-stay discount %d: percent must be within [0, 100), got %d", i, d.DiscountPercent)
		}
	}
	return nil
}

func cloneBands(bands []Band) []Band {
	if bands == nil {
		return nil
	}
	return append(make([]Band, 0, len(bands)), bands...)
}

func cloneDiscounts(discounts []LongStayDiscount) []LongStayDiscount {
	if discounts == nil {
		return nil
	}
	return append(make([]LongStayDiscount, 0, len(discounts)), discounts...)
}
