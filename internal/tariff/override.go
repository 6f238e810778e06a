package tariff

import (
	"github.com/iwvelando/rental-quote/pkg/constants"
)

// Override replaces one or both arrays of a season's built-in table.
//
// A nil PeopleBands (or an empty one) keeps the built-in bands. A nil
// LongStayDiscounts keeps the built-in thresholds, while a non-nil empty
// slice removes them.
type Override struct {
	PeopleBands       []Band             `json:"peopleBands,omitempty" yaml:"peopleBands,omitempty"`
	LongStayDiscounts []LongStayDiscount `json:"longStayDiscounts" yaml:"longStayDiscounts"`
}

// Clone returns a deep copy of the override.
func (o *Override) Clone() *Override {
	if o == nil {
		return nil
	}
	return &Override{
		PeopleBands:       cloneBands(o.PeopleBands),
		LongStayDiscounts: cloneDiscounts(o.LongStayDiscounts),
	}
}

// Validate reports the first entry that cannot be priced.
func (o *Override) Validate() error {
	if o == nil {
		return nil
	}
	return validateEntries(o.PeopleBands, o.LongStayDiscounts)
}

// Merge builds the effective table: each override array replaces the
// built-in array wholesale, never element by element.
func Merge(builtin Table, override *Override) Table {
	effective := builtin.Clone()
	if override == nil {
		return effective
	}
	if len(override.PeopleBands) > 0 {
		effective.PeopleBands = cloneBands(override.PeopleBands)
	}
	if override.LongStayDiscounts != nil {
		effective.LongStayDiscounts = cloneDiscounts(override.LongStayDiscounts)
	}
	return effective
}

// Overrides is the persisted per-season override mapping. It is a value:
// every edit returns a new Overrides and leaves the receiver untouched.
type Overrides struct {
	Summer *Override `json:"summer" yaml:"summer"`
	Autumn *Override `json:"autumn" yaml:"autumn"`
}

// For returns a copy of the season's override, or nil when the season uses
// its built-in table.
func (o Overrides) For(season string) *Override {
	if season == constants.SeasonAutumn {
		return o.Autumn.Clone()
	}
	return o.Summer.Clone()
}

// WithSeason returns a copy of the mapping with the season's override
// replaced. A nil override restores the built-in table.
func (o Overrides) WithSeason(season string, override *Override) Overrides {
	next := o.Clone()
	if season == constants.SeasonAutumn {
		next.Autumn = override.Clone()
	} else {
		next.Summer = override.Clone()
	}
	return next
}

// Reset drops the season's override.
func (o Overrides) Reset(season string) Overrides {
	return o.WithSeason(season, nil)
}

// Clone returns a deep copy of the mapping.
func (o Overrides) Clone() Overrides {
	return Overrides{Summer: o.Summer.Clone(), Autumn: o.Autumn.Clone()}
}

// Validate checks both seasons.
func (o Overrides) Validate() error {
	if err := o.Summer.Validate(); err != nil {
		return err
	}
	return o.Autumn.Validate()
}

// UpdateBand replaces the band at idx. When the season has no band override
// yet, editing starts from the effective bands. Out-of-range indexes leave the
// mapping unchanged.
func (o Overrides) UpdateBand(season string, effective Table, idx int, band Band) Overrides {
	draft, bands := o.bandDraft(season, effective)
	if idx < 0 || idx >= len(bands) {
		return o
	}
	bands[idx] = band
	draft.PeopleBands = bands
	return o.WithSeason(season, draft)
}

// AppendBand adds a band at the end of the season's bands.
func (o Overrides) AppendBand(season string, effective Table, band Band) Overrides {
	draft, bands := o.bandDraft(season, effective)
	draft.PeopleBands = append(bands, band)
	return o.WithSeason(season, draft)
}

// RemoveBand deletes the band at idx.
func (o Overrides) RemoveBand(season string, effective Table, idx int) Overrides {
	draft, bands := o.bandDraft(season, effective)
	if idx < 0 || idx >= len(bands) {
		return o
	}
	draft.PeopleBands = append(bands[:idx], bands[idx+1:]...)
	return o.WithSeason(season, draft)
}

// UpdateDiscount replaces the long-stay threshold at idx.
func (o Overrides) UpdateDiscount(season string, effective Table, idx int, discount LongStayDiscount) Overrides {
	draft, discounts := o.discountDraft(season, effective)
	if idx < 0 || idx >= len(discounts) {
		return o
	}
	discounts[idx] = discount
	draft.LongStayDiscounts = discounts
	return o.WithSeason(season, draft)
}

// AppendDiscount adds a long-stay threshold.
func (o Overrides) AppendDiscount(season string, effective Table, discount LongStayDiscount) Overrides {
	draft, discounts := o.discountDraft(season, effective)
	draft.LongStayDiscounts = append(discounts, discount)
	return o.WithSeason(season, draft)
}

// RemoveDiscount deletes the long-stay threshold at idx.
func (o Overrides) RemoveDiscount(season string, effective Table, idx int) Overrides {
	draft, discounts := o.discountDraft(season, effective)
	if idx < 0 || idx >= len(discounts) {
		return o
	}
	draft.LongStayDiscounts = append(discounts[:idx], discounts[idx+1:]...)
	return o.WithSeason(season, draft)
}

// bandDraft returns a private copy of the season's override and the band list
// to edit.
func (o Overrides) bandDraft(season string, effective Table) (*Override, []Band) {
	draft := o.For(season)
	if draft == nil {
		draft = &Override{}
	}
	if draft.PeopleBands != nil {
		return draft, draft.PeopleBands
	}
	return draft, cloneBands(effective.PeopleBands)
}

func (o Overrides) discountDraft(season string, effective Table) (*Override, []LongStayDiscount) {
	draft := o.For(season)
	if draft == nil {
		draft = &Override{}
	}
	if draft.LongStayDiscounts != nil {
		return draft, draft.LongStayDiscounts
	}
	discounts := cloneDiscounts(effective.LongStayDiscounts)
	if discounts == nil {
		discounts = []LongStayDiscount{}
	}
	return draft, discounts
}
