// Package currency converts between market display price strings and integer
// cent amounts.
package currency

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NotAvailable is the placeholder the market uses for missing prices.
const NotAvailable = "N/A"

// centFraction is the number of minor-unit digits every amount carries.
const centFraction = 2

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// ParsePriceToNumber converts a display price such as "$1,234.56" to cents.
// Every character other than digits and '.' is dropped, the longest numeric
// prefix of the remainder is parsed and scaled by 100, and the result is
// rounded half away from zero. Empty input, "N/A", anything without a
// leading number and amounts too large for int64 cents yield 0.
func ParsePriceToNumber(text string) int64 {
	text = strings.TrimSpace(text)
	if text == "" || text == NotAvailable {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	num := numericPrefix(cleaned)
	if num == "" {
		return 0
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0
	}
	cents, ok := toCents(d)
	if !ok {
		return 0
	}
	return cents
}

// toCents scales a major-unit amount to rounded cents, reporting false when
// the result does not fit in an int64.
func toCents(d decimal.Decimal) (int64, bool) {
	c := d.Mul(hundred).Round(0)
	if c.Abs().GreaterThan(maxCents) {
		return 0, false
	}
	return c.IntPart(), true
}

// numericPrefix returns the longest prefix of s of the form digits[.digits]
// that contains at least one digit, e.g. "1.2.3" → "1.2", "." → "".
func numericPrefix(s string) string {
	end, digits, dot := 0, 0, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if dot {
				break
			}
			dot = true
			end = i + 1
			continue
		}
		digits++
		end = i + 1
	}
	if digits == 0 {
		return ""
	}
	num := strings.TrimSuffix(s[:end], ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	return num
}

// steamDotDecimal maps Steam market currency ids to ISO 4217 codes for the
// currencies whose prices Steam writes with a '.' decimal separator. Those
// are the only ones ParsePriceToNumber reads correctly.
var steamDotDecimal = map[int]string{
	1:  money.USD,
	2:  money.GBP,
	13: money.SGD,
	19: money.MXN,
	20: money.CAD,
	21: money.AUD,
	22: money.NZD,
}

// SteamCurrencyCode returns the ISO code of a supported Steam currency id.
func SteamCurrencyCode(id int) (string, bool) {
	code, ok := steamDotDecimal[id]
	return code, ok
}

// Formatter renders cent amounts for one currency.
type Formatter struct {
	code string
	f    *money.Formatter
}

// NewFormatter returns a Formatter for the ISO 4217 code. Unknown codes fall
// back to USD. Amounts always carry two decimals and no digit grouping.
func NewFormatter(code string) *Formatter {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	return &Formatter{
		code: cur.Code,
		f:    money.NewFormatter(centFraction, cur.Decimal, "", cur.Grapheme, cur.Template),
	}
}

// Code returns the ISO 4217 code the Formatter renders.
func (f *Formatter) Code() string { return f.code }

// Format renders cents, e.g. 150 → "$1.50".
func (f *Formatter) Format(cents int64) string {
	return f.f.Format(cents)
}

var defaultFormatter = NewFormatter(money.USD)

// FormatPrice renders cents as a dollar amount with exactly two decimals:
// 150 → "$1.50", 0 → "$0.00".
func FormatPrice(cents int64) string {
	return defaultFormatter.Format(cents)
}

// ApplyTax returns cents reduced by rate (0.15 removes 15%), rounded to the
// nearest cent.
func ApplyTax(cents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(decimal.NewFromInt(1).Sub(rate)).Round(0).IntPart()
}

// FromDecimal converts a major-unit amount (1.5) to cents (150). ok is false
// when the amount does not fit in int64 cents.
func FromDecimal(d decimal.Decimal) (cents int64, ok bool) {
	return toCents(d)
}

// ToDecimal converts cents to a major-unit amount.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -centFraction)
}

//Personal.AI order the ending
