// Package session is the process-local state container behind a quoting
// form: the raw field text the operator typed, the suggestions derived from
// the effective tariff, and the last computed quote.
//
// The form is modelled without reactive effects. Every setter updates the
// dependent suggestions itself and, when the discount or the payment plan
// changed while a quote exists, recomputes that quote. A quote never feeds
// back into the discount or the plan.
package session

import (
	"context"

	"github.com/iwvelando/rental-quote/internal/observability"
	"github.com/iwvelando/rental-quote/internal/quote"
	"github.com/iwvelando/rental-quote/internal/share"
	"github.com/iwvelando/rental-quote/internal/store"
	"github.com/iwvelando/rental-quote/internal/summary"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
	"go.uber.org/zap"
)

// Notifier shows a transient, non-blocking message to the operator.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// OverrideRepository persists the tariff override mapping.
type OverrideRepository interface {
	Load(ctx context.Context) (tariff.Overrides, error)
	Save(ctx context.Context, overrides tariff.Overrides) error
}

// PreferenceRepository persists the theme and the install prompt flag.
type PreferenceRepository interface {
	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, theme string) error
	ToggleTheme(ctx context.Context) (string, error)
	InstallPromptDismissed(ctx context.Context) bool
	DismissInstallPrompt(ctx context.Context) error
}

// Options wires a Session. Every field is optional.
type Options struct {
	Catalog     *tariff.Catalog
	Overrides   OverrideRepository
	Preferences PreferenceRepository
	Sharer      *share.Sharer
	Notifier    Notifier
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// Session holds one operator's form. It is not safe for concurrent use.
type Session struct {
	catalog     tariff.Catalog
	repo        OverrideRepository
	prefs       PreferenceRepository
	sharer      *share.Sharer
	notifier    Notifier
	metrics     *observability.Metrics
	logger      *zap.Logger
	overrides   tariff.Overrides
	effective   tariff.Table
	installable InstallPrompt

	season     string
	guestsText string
	nightsText string
	priceText  string
	discount   int
	plans      map[string]string

	manualPrice    bool
	manualDiscount bool

	suggestedPrice       money.Cents
	suggestedDiscount    int
	hasSuggestedDiscount bool

	quote *quote.Quote
}

// New builds a session for the summer season and loads the persisted
// overrides. A load failure is logged and the built-in tables are used.
func New(ctx context.Context, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		catalog:  tariff.DefaultCatalog(),
		repo:     opts.Overrides,
		prefs:    opts.Preferences,
		sharer:   opts.Sharer,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   logger,
		season:   constants.SeasonSummer,
		plans:    defaultPlans(),
	}
	if opts.Catalog != nil {
		s.catalog = *opts.Catalog
	}
	if s.repo == nil {
		s.repo = store.NewOverrideStore(store.NewMemoryKV(), logger)
	}
	if s.prefs == nil {
		s.prefs = store.NewPreferences(store.NewMemoryKV(), constants.ThemeLight, logger)
	}
	if s.sharer == nil {
		s.sharer = share.NewSharer(nil, nil)
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(string) {})
	}

	overrides, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("using built-in tariffs",
			zap.String("op", "session.New"),
			zap.Error(err),
		)
	}
	s.overrides = overrides
	s.refreshTariff()
	return s
}

func defaultPlans() map[string]string {
	return map[string]string{
		constants.SeasonSummer: constants.DefaultPlan,
		constants.SeasonAutumn: constants.DefaultPlan,
	}
}

// Season returns the selected season.
func (s *Session) Season() string { return s.season }

// Guests returns the guest field text.
func (s *Session) Guests() string { return s.guestsText }

// Nights returns the nights field text.
func (s *Session) Nights() string { return s.nightsText }

// Price returns the nightly price field text.
func (s *Session) Price() string { return s.priceText }

// DiscountPercent returns the selected discount, 0 when none.
func (s *Session) DiscountPercent() int { return s.discount }

// Plan returns the payment plan selected for the current season.
func (s *Session) Plan() string { return s.plans[s.season] }

// SuggestedPriceCents is the nightly price of the band matching the guest
// count, 0 when no band applies.
func (s *Session) SuggestedPriceCents() money.Cents { return s.suggestedPrice }

// SuggestedDiscount is the long-stay discount the stay qualifies for.
func (s *Session) SuggestedDiscount() (int, bool) {
	return s.suggestedDiscount, s.hasSuggestedDiscount
}

// Effective returns a copy of the current season's effective tariff.
func (s *Session) Effective() tariff.Table { return s.effective.Clone() }

// DiscountOptions lists the discounts the operator can choose from.
func (s *Session) DiscountOptions() []int { return tariff.DiscountOptions(s.effective) }

// SetSeason switches season. The effective tariff is rebuilt and the manual
// discount choice is forgotten.
func (s *Session) SetSeason(season string) {
	if season != constants.SeasonAutumn {
		season = constants.SeasonSummer
	}
	s.season = season
	s.refreshTariff()
}

// SetGuests stores the guest field text and refreshes the price suggestion.
func (s *Session) SetGuests(text string) {
	s.guestsText = text
	s.refreshPriceSuggestion()
}

// SetNights stores the nights field text and refreshes the discount
// suggestion.
func (s *Session) SetNights(text string) {
	s.nightsText = text
	s.refreshDiscountSuggestion()
}

// SetPrice stores text typed by the operator. From then on suggestions only
// fill the price while the field is empty.
func (s *Session) SetPrice(text string) {
	s.priceText = text
	s.manualPrice = true
}

// SelectDiscount chooses a discount option. Choosing the selected option
// again removes the discount.
func (s *Session) SelectDiscount(percent int) {
	next := percent
	if percent == s.discount {
		next = 0
	}
	s.manualDiscount = true
	s.setDiscount(next)
}

// SetPlan selects the payment plan for the current season.
func (s *Session) SetPlan(plan string) {
	plan = quote.NormalizePlan(plan)
	if s.plans[s.season] == plan {
		return
	}
	s.plans[s.season] = plan
	s.recomputeIfQuote()
}

// CanCalculate reports whether the form holds enough to price a stay.
func (s *Session) CanCalculate() bool {
	return quote.CanCalculate(s.input())
}

// Calculate prices the form. Invalid input clears the previous quote.
func (s *Session) Calculate() (quote.Quote, bool) {
	q, ok := quote.Calculate(s.input())
	if !ok {
		s.quote = nil
		s.metrics.ObserveDecline()
		s.logger.Debug("calculation declined",
			zap.String("op", "session.Calculate"),
			zap.String("price", s.priceText),
			zap.String("nights", s.nightsText),
			zap.String("guests", s.guestsText),
		)
		return quote.Quote{}, false
	}
	s.setQuote(q)
	return q, true
}

// Quote returns the last computed quote.
func (s *Session) Quote() (quote.Quote, bool) {
	if s.quote == nil {
		return quote.Quote{}, false
	}
	return *s.quote, true
}

// Summary returns the share text of the current quote, "" when none.
func (s *Session) Summary() string {
	if s.quote == nil {
		return ""
	}
	return summary.Text(*s.quote)
}

// Lines returns the display rows of the current quote.
func (s *Session) Lines() []summary.Line {
	if s.quote == nil {
		return nil
	}
	return summary.Lines(*s.quote)
}

// Clear empties the form, resets both payment plans and drops the quote.
func (s *Session) Clear() {
	s.priceText = ""
	s.nightsText = ""
	s.guestsText = ""
	s.discount = 0
	s.plans = defaultPlans()
	s.quote = nil
	s.manualPrice = false
	s.manualDiscount = false
	s.refreshPriceSuggestion()
	s.refreshDiscountSuggestion()
}

func (s *Session) input() quote.Input {
	return quote.Input{
		PricePerNightCents: money.ParseToCents(s.priceText),
		Nights:             money.ParseCount(s.nightsText),
		Guests:             money.ParseCount(s.guestsText),
		DiscountPercent:    s.discount,
		Season:             s.season,
		Plan:               s.plans[s.season],
	}
}

func (s *Session) setQuote(q quote.Quote) {
	s.quote = &q
	s.metrics.ObserveQuote(q.Season, q.Plan)
}

// recomputeIfQuote refreshes an existing quote after a discount or plan
// change. Without a quote, or with invalid input, nothing changes.
func (s *Session) recomputeIfQuote() {
	if s.quote == nil {
		return
	}
	if q, ok := quote.Calculate(s.input()); ok {
		s.setQuote(q)
	}
}

func (s *Session) setDiscount(percent int) {
	if percent == s.discount {
		return
	}
	s.discount = percent
	s.recomputeIfQuote()
}

func (s *Session) refreshTariff() {
	s.effective = s.catalog.Effective(s.season, s.overrides)
	s.manualDiscount = false
	s.refreshPriceSuggestion()
	s.refreshDiscountSuggestion()
}

// refreshPriceSuggestion fills the price field when the suggestion changes,
// unless the operator typed a price that is still there.
func (s *Session) refreshPriceSuggestion() {
	var next money.Cents
	if band, ok := tariff.PickBandForPeople(s.effective, money.ParseCount(s.guestsText)); ok {
		next = band.PriceCents()
	}
	if next == s.suggestedPrice {
		return
	}
	s.suggestedPrice = next
	if next > 0 && (!s.manualPrice || s.priceText == "") {
		s.priceText = money.GroupThousands(next.Pesos())
	}
}

func (s *Session) refreshDiscountSuggestion() {
	s.suggestedDiscount, s.hasSuggestedDiscount = tariff.PickLongStayDiscount(s.effective, money.ParseCount(s.nightsText))
	s.applySuggestedDiscount()
}

// applySuggestedDiscount adopts the long-stay discount automatically. Only
// autumn does this; summer discounts are always chosen by hand.
func (s *Session) applySuggestedDiscount() {
	if s.season != constants.SeasonAutumn || s.manualDiscount {
		return
	}
	if !s.hasSuggestedDiscount || s.suggestedDiscount == 0 {
		return
	}
	s.setDiscount(s.suggestedDiscount)
}
