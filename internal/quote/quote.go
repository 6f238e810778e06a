// Package quote turns a nightly price, a stay length, a discount and a payment
// plan into a priced quote with its installment schedule.
package quote

import (
	"math"

	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
)

// Installment shares of the discounted total.
const (
	depositShareThreePayments = 0.2
	secondShareThreePayments  = 0.3
	depositShareTwoPayments   = 0.5
)

// Input carries everything needed to price a stay.
type Input struct {
	PricePerNightCents money.Cents
	Nights             int
	Guests             int
	DiscountPercent    int
	Season             string
	Plan               string
}

// Quote is an immutable snapshot of one calculation.
type Quote struct {
	TotalOriginal      money.Cents `json:"totalOriginal"`
	TotalWithDiscount  money.Cents `json:"totalWithDiscount"`
	Deposit            money.Cents `json:"sena"`
	SecondPayment      money.Cents `json:"segundo"`
	Balance            money.Cents `json:"saldo"`
	Nights             int         `json:"nights"`
	Guests             int         `json:"guests"`
	PricePerNightCents money.Cents `json:"pricePerNightCents"`
	DiscountPercent    int         `json:"discountPercent"`
	Season             string      `json:"season"`
	Plan               string      `json:"paymentPlan"`
}

// Discounted reports whether a discount was applied.
func (q Quote) Discounted() bool {
	return q.DiscountPercent != 0
}

// DiscountAmount is the amount taken off the original total.
func (q Quote) DiscountAmount() money.Cents {
	return q.TotalOriginal - q.TotalWithDiscount
}

// TwoPayments reports whether the quote uses the 50/50 split.
func (q Quote) TwoPayments() bool {
	return q.Plan == constants.PlanTwoPayments
}

// CanCalculate reports whether the input satisfies the calculator's
// preconditions: positive price, nights and guests, a discount within
// [0, 100) and a total that fits in Cents.
func CanCalculate(in Input) bool {
	if in.PricePerNightCents <= 0 || in.Nights <= 0 || in.Guests <= 0 {
		return false
	}
	if in.DiscountPercent < 0 || in.DiscountPercent >= constants.PercentageMultiplier {
		return false
	}
	return in.PricePerNightCents <= math.MaxInt64/money.Cents(in.Nights)
}

// Calculate prices the stay. It returns false, and no quote, when the input
// does not satisfy CanCalculate.
//
// Each installment is rounded on its own from the discounted total and the
// balance absorbs the remainder, so the installments always add up to the
// discounted total.
func Calculate(in Input) (Quote, bool) {
	if !CanCalculate(in) {
		return Quote{}, false
	}

	plan := NormalizePlan(in.Plan)
	totalOriginal := in.PricePerNightCents * money.Cents(in.Nights)
	totalWithDiscount := money.Scale(totalOriginal, 1-float64(in.DiscountPercent)/constants.PercentageMultiplier)

	deposit, second, balance := Split(totalWithDiscount, plan)

	return Quote{
		TotalOriginal:      totalOriginal,
		TotalWithDiscount:  totalWithDiscount,
		Deposit:            deposit,
		SecondPayment:      second,
		Balance:            balance,
		Nights:             in.Nights,
		Guests:             in.Guests,
		PricePerNightCents: in.PricePerNightCents,
		DiscountPercent:    in.DiscountPercent,
		Season:             in.Season,
		Plan:               plan,
	}, true
}

// Split divides a total into deposit, second payment and balance according to
// the plan. The second payment is zero for the two-payment plan.
func Split(total money.Cents, plan string) (deposit, second, balance money.Cents) {
	if NormalizePlan(plan) == constants.PlanTwoPayments {
		deposit = money.Scale(total, depositShareTwoPayments)
		return deposit, 0, total - deposit
	}

	deposit = money.Scale(total, depositShareThreePayments)
	second = money.Scale(total, secondShareThreePayments)
	return deposit, second, total - deposit - second
}

// NormalizePlan maps anything other than the two-payment selector to the
// three-payment plan.
func NormalizePlan(plan string) string {
	if plan == constants.PlanTwoPayments {
		return constants.PlanTwoPayments
	}
	return constants.PlanThreePayments
}
