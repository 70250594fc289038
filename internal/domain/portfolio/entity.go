// Package portfolio models the single persisted holdings record and the pure
// operations over it. Every operation returns a new Record and leaves its
// input untouched; callers persist the result.
package portfolio

import (
	"time"
)

// MinQuantity is the smallest quantity stored for a held item.
const MinQuantity = 1

// Holding is the amount of one item held.
type Holding struct {
	Quantity int `json:"quantity"`
}

// Meta carries record-level bookkeeping.
type Meta struct {
	// LastPriceUpdate is the time of the last price merge in milliseconds
	// since the Unix epoch, nil when prices were never merged.
	LastPriceUpdate *int64 `json:"lastPriceUpdate"`
}

// LastUpdate returns LastPriceUpdate as a time, or false when unset.
func (m Meta) LastUpdate() (time.Time, bool) {
	if m.LastPriceUpdate == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*m.LastPriceUpdate), true
}

// Record is the sole persisted aggregate: holdings, last known prices in
// cents and metadata. Prices may exist for items that are not held.
type Record struct {
	Items  map[string]Holding `json:"items"`
	Prices map[string]int64   `json:"prices"`
	Meta   Meta               `json:"meta"`
}

// NewRecord returns the default empty record.
func NewRecord() Record {
	return Record{
		Items:  map[string]Holding{},
		Prices: map[string]int64{},
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := Record{
		Items:  make(map[string]Holding, len(r.Items)),
		Prices: make(map[string]int64, len(r.Prices)),
	}
	for k, v := range r.Items {
		out.Items[k] = v
	}
	for k, v := range r.Prices {
		out.Prices[k] = v
	}
	if r.Meta.LastPriceUpdate != nil {
		ts := *r.Meta.LastPriceUpdate
		out.Meta.LastPriceUpdate = &ts
	}
	return out
}

// Holds reports whether name is currently held.
func (r Record) Holds(name string) bool {
	_, ok := r.Items[name]
	return ok
}

// Price returns the last known price of name in cents, 0 when unknown.
func (r Record) Price(name string) int64 {
	return r.Prices[name]
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

func clampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	return qty
}

// SetQuantity upserts the holding for name with max(1, qty). Prices are left
// untouched.
func SetQuantity(rec Record, name string, qty int) Record {
	out := rec.Clone()
	out.Items[name] = Holding{Quantity: clampQuantity(qty)}
	return out
}

// RemoveItem deletes the holding for name. Removing an absent name returns an
// equal record.
func RemoveItem(rec Record, name string) Record {
	out := rec.Clone()
	delete(out.Items, name)
	return out
}

// MergePrices overwrites the given prices and stamps the record with the
// current time, whether or not the items are held.
func MergePrices(rec Record, prices map[string]int64) Record {
	return MergePricesAt(rec, prices, time.Now())
}

// MergePricesAt is MergePrices with an explicit timestamp.
func MergePricesAt(rec Record, prices map[string]int64, at time.Time) Record {
	out := rec.Clone()
	for name, cents := range prices {
		out.Prices[name] = cents
	}
	ts := at.UnixMilli()
	out.Meta.LastPriceUpdate = &ts
	return out
}

// AddItem sets the quantity of name and records its price in one step.
func AddItem(rec Record, name string, qty int, cents int64) Record {
	return MergePrices(SetQuantity(rec, name, qty), map[string]int64{name: cents})
}

// Normalize fills nil maps and clamps stored quantities below the minimum.
// Records read from storage pass through it.
func Normalize(rec Record) Record {
	out := rec.Clone()
	for name, h := range out.Items {
		if h.Quantity < MinQuantity {
			out.Items[name] = Holding{Quantity: MinQuantity}
		}
	}
	return out
}

//Personal.AI order the ending
