package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/turtacn/casefolio/internal/domain/catalog"
	"github.com/turtacn/casefolio/internal/domain/currency"
)

// Entry is one held item with its valuation.
type Entry struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        catalog.Type `json:"type,omitempty"`
	Quantity    int          `json:"quantity"`
	UnitCents   int64        `json:"unit_cents"`
	LineCents   int64        `json:"line_cents"`
}

// TotalValue sums price × quantity over held items. A missing price counts
// as zero.
func TotalValue(rec Record) int64 {
	var total int64
	for name, h := range rec.Items {
		total += rec.Prices[name] * int64(h.Quantity)
	}
	return total
}

// NetValue is TotalValue after deducting the marketplace tax rate.
func NetValue(rec Record, taxRate decimal.Decimal) int64 {
	return currency.ApplyTax(TotalValue(rec), taxRate)
}

// UniqueCount returns the number of distinct held items.
func UniqueCount(rec Record) int {
	return len(rec.Items)
}

// TotalQuantity returns the number of units held across all items.
func TotalQuantity(rec Record) int {
	n := 0
	for _, h := range rec.Items {
		n += h.Quantity
	}
	return n
}

// Entries lists held items sorted by name.
func Entries(rec Record) []Entry {
	out := make([]Entry, 0, len(rec.Items))
	for name, h := range rec.Items {
		unit := rec.Prices[name]
		e := Entry{
			Name:        name,
			DisplayName: catalog.DisplayName(name),
			Quantity:    h.Quantity,
			UnitCents:   unit,
			LineCents:   unit * int64(h.Quantity),
		}
		if it, ok := catalog.Lookup(name); ok {
			e.Type = it.Type
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

//Personal.AI order the ending
