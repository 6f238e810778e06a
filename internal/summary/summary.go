// Package summary renders a quote for people: the message shared with
// guests, the rows shown on screen and the text copied for a single amount.
package summary

import (
	"fmt"
	"strings"

	"github.com/iwvelando/rental-quote/internal/quote"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
)

const (
	emojiSummer = "🏖️"
	emojiAutumn = "🍂"

	closingNote = "(Por mail enviamos la confirmación de la reserva junto a la factura correspondiente)"
)

// SeasonEmoji returns the season marker used in headers.
func SeasonEmoji(season string) string {
	if season == constants.SeasonAutumn {
		return emojiAutumn
	}
	return emojiSummer
}

// Text builds the message shared with a guest. Guests paste it into chat
// apps, so wording, emoji, blank lines and trailing spaces are part of the
// format.
func Text(q quote.Quote) string {
	var b strings.Builder

	b.WriteString(SeasonEmoji(q.Season))
	b.WriteString(" Su Presupuesto\n\n")
	fmt.Fprintf(&b, "✅ Precio por noche %s\n", money.FormatValue(q.PricePerNightCents))
	fmt.Fprintf(&b, "X %d %s\n\n", q.Nights, nightsWord(q.Nights))

	fmt.Fprintf(&b, "✅ *Total %s*", money.FormatValue(q.TotalOriginal))
	if q.Discounted() {
		fmt.Fprintf(&b, "\n*Descuento %d%%: -%s*", q.DiscountPercent, money.FormatValue(q.DiscountAmount()))
		fmt.Fprintf(&b, "\n*Total final: %s*", money.FormatValue(q.TotalWithDiscount))
	}
	b.WriteString("\n\n")

	if q.TwoPayments() {
		writeInstallment(&b, "📍1° pago 50% (Seña)", q.Deposit)
		writeInstallment(&b, "📍2° pago 50%. Al llegar en efectivo ", q.Balance)
	} else {
		writeInstallment(&b, "📍1° pago 20%", q.Deposit)
		writeInstallment(&b, "📍2° pago 30% (Debe abonarse antes de la fecha de ingreso) ", q.SecondPayment)
		writeInstallment(&b, "📍3° pago 50%. Al llegar en efectivo ", q.Balance)
	}

	b.WriteString(closingNote)
	return b.String()
}

func writeInstallment(b *strings.Builder, label string, amount money.Cents) {
	fmt.Fprintf(b, "%s\n\n*%s*\n\n", label, money.FormatValue(amount))
}

func nightsWord(nights int) string {
	if nights > 1 {
		return "noches"
	}
	return "noche"
}

// Line is one on-screen row of a quote.
type Line struct {
	Label     string      `json:"label"`
	CopyLabel string      `json:"copyLabel"`
	Amount    money.Cents `json:"amount"`
	Display   string      `json:"display"`
}

// Lines lists the rows shown for a quote, in display order.
func Lines(q quote.Quote) []Line {
	lines := make([]Line, 0, 5)
	add := func(label, copyLabel string, amount money.Cents) {
		lines = append(lines, Line{
			Label:     label,
			CopyLabel: copyLabel,
			Amount:    amount,
			Display:   money.FormatARS(amount),
		})
	}

	add("Total", "Total", q.TotalOriginal)
	if q.Discounted() {
		add(fmt.Sprintf("Total con descuento (%d%%)", q.DiscountPercent), "Total con descuento", q.TotalWithDiscount)
	}

	if q.TwoPayments() {
		add("Seña (50%)", "Seña", q.Deposit)
	} else {
		add("Seña (20%)", "Seña", q.Deposit)
	}
	if q.SecondPayment > 0 {
		add("Segundo pago (30%)", "Segundo pago", q.SecondPayment)
	}
	if q.TwoPayments() {
		add("Segundo pago (50%)", "Segundo pago", q.Balance)
	} else {
		add("Saldo final (50%)", "Saldo final", q.Balance)
	}

	return lines
}

// StayLine is the "price × nights" caption shown above the total.
func StayLine(q quote.Quote) string {
	return fmt.Sprintf("%s × %d %s", money.FormatARS(q.PricePerNightCents), q.Nights, nightsWord(q.Nights))
}

// CopyText is what gets copied for a single amount.
func CopyText(amount money.Cents) string {
	return money.FormatValue(amount)
}

// CopiedMessage is the feedback shown after copying the amount labelled
// label.
func CopiedMessage(label string) string {
	return fmt.Sprintf("¡%s copiado!", label)
}
