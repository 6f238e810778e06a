// Package output provides utilities for formatting and displaying quotes and
// tariff tables on the command line.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/rental-quote/internal/quote"
	"github.com/iwvelando/rental-quote/internal/summary"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printerTag = language.MustParse("es-AR")

// Write renders q in the requested format.
func Write(w io.Writer, format string, q quote.Quote) error {
	switch format {
	case constants.OutputFormatCSV:
		return CSVFormat(w, q)
	case constants.OutputFormatSummary:
		return SummaryFormat(w, q)
	default:
		return PrettyFormat(w, q)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
// Next to the rounded display amount, each row shows the exact amount with
// centavos, grouped for the es-AR locale.
func PrettyFormat(w io.Writer, q quote.Quote) error {
	p := message.NewPrinter(printerTag)

	if _, err := fmt.Fprintf(w, "%s Presupuesto (%s, plan %s pagos)\n", summary.SeasonEmoji(q.Season), q.Season, q.Plan); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Huéspedes: %d\n%s\n", q.Guests, summary.StayLine(q)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-28s | %-12s | %s\n", "Concepto", "Monto", "Exacto"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-28s | %-12s | %s\n", "________", "_____", "______"); err != nil {
		return err
	}
	for _, line := range summary.Lines(q) {
		if _, err := p.Fprintf(w, "%-28s | %-12s | $%.2f\n", line.Label, line.Display, exactPesos(line.Amount)); err != nil {
			return err
		}
	}
	if q.Discounted() {
		if _, err := fmt.Fprintf(w, "Descuento aplicado: %d%% (%s)\n", q.DiscountPercent, money.FormatARS(q.DiscountAmount())); err != nil {
			return err
		}
	}
	return nil
}

func exactPesos(c money.Cents) float64 {
	return float64(c) / constants.CentsPerPeso
}

// CSVFormat outputs in comma-separated value format, one row per display
// line with the exact amount in cents.
func CSVFormat(w io.Writer, q quote.Quote) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "amount_cents", "display"}); err != nil {
		return err
	}
	for _, line := range summary.Lines(q) {
		record := []string{line.Label, strconv.FormatInt(int64(line.Amount), 10), summary.CopyText(line.Amount)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryFormat outputs the message shared with guests.
func SummaryFormat(w io.Writer, q quote.Quote) error {
	_, err := fmt.Fprintln(w, summary.Text(q))
	return err
}

// TariffFormat lists a season's effective tariff and the discount options it
// offers.
func TariffFormat(w io.Writer, season string, table tariff.Table) error {
	if _, err := fmt.Fprintf(w, "--- Tarifas %s %s ---\n", summary.SeasonEmoji(season), season); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Personas | Precio por noche\n"); err != nil {
		return err
	}
	for _, band := range table.PeopleBands {
		if _, err := fmt.Fprintf(w, "%8d | %s\n", band.People, money.FormatARS(band.PriceCents())); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Noches mínimas | Descuento\n"); err != nil {
		return err
	}
	for _, d := range table.LongStayDiscounts {
		if _, err := fmt.Fprintf(w, "%14d | %d%%\n", d.MinNights, d.DiscountPercent); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Opciones de descuento: %v\n", tariff.DiscountOptions(table))
	return err
}
