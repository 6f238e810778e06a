// Package money handles peso amounts held as integer cents, including the
// lenient parsing of operator-typed prices and es-AR display formatting.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/rental-quote/pkg/constants"
)

// Cents is an amount of Argentine pesos expressed in cents. All quote
// arithmetic happens on Cents; conversion to whole pesos only happens for
// display.
type Cents int64

// FromPesos converts whole pesos to cents.
func FromPesos(pesos int64) Cents {
	return Cents(pesos * constants.CentsPerPeso)
}

// Pesos returns the amount rounded to the nearest whole peso, halves rounding
// up.
func (c Cents) Pesos() int64 {
	return Round(float64(c) / constants.CentsPerPeso)
}

// Round rounds half up (towards positive infinity), which is the rounding
// used for every installment and discount step.
func Round(val float64) int64 {
	return int64(math.Floor(val + 0.5))
}

// Scale multiplies an amount by a factor and rounds the result to a whole
// cent. A factor of 1 returns c unchanged, since amounts near the top of the
// int64 range do not survive the float64 round trip.
func Scale(c Cents, factor float64) Cents {
	if factor == 1 {
		return c
	}
	return Cents(Round(float64(c) * factor))
}

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.,]`)
	decimalPrefix = regexp.MustCompile(`^[0-9]*(\.[0-9]*)?`)
	countPrefix   = regexp.MustCompile(`^[+-]?[0-9]+`)
)

// ParseToCents converts free text such as "1.234,56", "$ 15.000" or "1234,5"
// into cents. Only digits, '.' and ',' are considered:
//   - both separators present: '.' groups thousands and ',' is the decimal mark
//   - only ',' present: ',' is the decimal mark
//   - only '.' present: '.' groups thousands, there are no decimals
//
// Empty, unparsable or out of range input yields 0.
func ParseToCents(raw string) Cents {
	s := nonNumeric.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return 0
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	normalized := s
	switch {
	case hasComma && hasDot:
		normalized = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case hasComma:
		normalized = strings.ReplaceAll(s, ",", ".")
	case hasDot:
		normalized = strings.ReplaceAll(s, ".", "")
	}

	// Anything after a second decimal mark is ignored.
	number := strings.TrimSuffix(decimalPrefix.FindString(normalized), ".")
	if strings.Trim(number, ".") == "" {
		return 0
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsInf(value, 0) {
		return 0
	}
	scaled := value * constants.CentsPerPeso
	if scaled >= math.MaxInt64 {
		return 0
	}
	return Cents(Round(scaled))
}

// ParseCount reads a leading integer from raw, ignoring surrounding
// whitespace and any trailing text ("10 noches" -> 10). It returns 0 when no
// integer is present.
func ParseCount(raw string) int {
	digits := countPrefix.FindString(strings.TrimSpace(raw))
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// GroupThousands renders an integer with '.' as the thousands separator
// (e.g., -1234567 -> "-1.234.567").
func GroupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
	}
	digits := strconv.FormatUint(absUint(n), 10)

	if len(digits) > 3 {
		var builder strings.Builder
		for i, digit := range digits {
			if i > 0 && (len(digits)-i)%3 == 0 {
				builder.WriteByte('.')
			}
			builder.WriteRune(digit)
		}
		digits = builder.String()
	}

	return sign + digits
}

// FormatARS renders cents as whole pesos in the es-AR currency style,
// e.g. "$ 15.000" (the separator after the symbol is a no-break space).
func FormatARS(c Cents) string {
	pesos := c.Pesos()
	formatted := GroupThousands(pesos)
	if pesos < 0 {
		return "-$\u00a0" + formatted[1:]
	}
	return "$\u00a0" + formatted
}

// FormatValue renders cents as the compact "$15.000" form used in shared
// messages and clipboard copies.
func FormatValue(c Cents) string {
	return "$" + GroupThousands(c.Pesos())
}

func absUint(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}
