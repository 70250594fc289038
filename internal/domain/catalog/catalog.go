// Package catalog holds the static list of tradable CS2 containers that the
// tracker knows how to price, together with display-name and search helpers.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Type classifies a catalog item.
type Type string

const (
	TypeCase    Type = "case"
	TypeCapsule Type = "capsule"
)

// Valid reports whether t is a known item type. The empty type is not valid.
func (t Type) Valid() bool {
	return t == TypeCase || t == TypeCapsule
}

// ParseType converts a user-supplied string into a Type. "" and "all" map to
// the empty type, which Filter treats as "any".
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", true
	case "case", "cases":
		return TypeCase, true
	case "capsule", "capsules":
		return TypeCapsule, true
	}
	return "", false
}

// Item is one tradable container. Name is the Steam market hash name and is
// the unique key used for pricing and holdings.
type Item struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Static data
// ─────────────────────────────────────────────────────────────────────────────

var caseNames = []string{
	"Dreams & Nightmares Case",
	"Clutch Case",
	"Prisma Case",
	"CS20 Case",
	"CS:GO Weapon Case",
	"Chroma 3 Case",
	"Copenhagen 2024 Nuke Souvenir Package",
	"Copenhagen 2024 Overpass Souvenir Package",
	"Danger Zone Case",
	"Fracture Case",
	"Gamma 2 Case",
	"Horizon Case",
	"Kilowatt Case",
	"Operation Breakout Weapon Case",
	"Operation Broken Fang Case",
	"Operation Hydra Case",
	"Operation Phoenix Weapon Case",
	"Operation Riptide Case",
	"Operation Vanguard Weapon Case",
	"Operation Wildfire Case",
	"Paris 2023 Anubis Souvenir Package",
	"Paris 2023 Mirage Souvenir Package",
	"Paris 2023 Vertigo Souvenir Package",
	"Prisma 2 Case",
	"Recoil Case",
	"Revolution Case",
	"Revolver Case",
	"Rio 2022 Ancient Souvenir Package",
	"Rio 2022 Dust II Souvenir Package",
	"Rio 2022 Mirage Souvenir Package",
	"Rio 2022 Overpass Souvenir Package",
	"Shattered Web Case",
	"Snakebite Case",
	"Spectrum 2 Case",
	"Fever Case",
	"Gallery Case",
}

var capsuleNames = []string{
	"Paris 2023 Legends Sticker Capsule",
	"Paris 2023 Challengers Sticker Capsule",
	"Paris 2023 Contenders Sticker Capsule",
	"Copenhagen 2024 Legends Sticker Capsule",
	"Copenhagen 2024 Challengers Sticker Capsule",
	"Copenhagen 2024 Contenders Sticker Capsule",
	"Rio 2022 Legends Sticker Capsule",
	"Rio 2022 Challengers Sticker Capsule",
	"Rio 2022 Contenders Sticker Capsule",
	"Antwerp 2022 Legends Sticker Capsule",
	"Community Sticker Capsule 1",
	"Riptide Surf Shop Sticker Capsule",
	"Warhammer 40,000 Sticker Capsule",
	"Espionage Sticker Capsule",
	"Ambush Sticker Capsule",
}

var (
	items []Item
	index map[string]Item
)

func init() {
	items = make([]Item, 0, len(caseNames)+len(capsuleNames))
	for _, n := range caseNames {
		items = append(items, Item{Name: n, Type: TypeCase})
	}
	for _, n := range capsuleNames {
		items = append(items, Item{Name: n, Type: TypeCapsule})
	}
	index = make(map[string]Item, len(items))
	for _, it := range items {
		index[it.Name] = it
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// All returns every catalog item, cases first, then capsules, each group in
// declaration order. The returned slice is a copy.
func All() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Cases returns only the case items.
func Cases() []Item { return Select(Filter{Type: TypeCase}) }

// Capsules returns only the capsule items.
func Capsules() []Item { return Select(Filter{Type: TypeCapsule}) }

// Lookup finds an item by its exact market hash name.
func Lookup(name string) (Item, bool) {
	it, ok := index[name]
	return it, ok
}

// Select returns the items matching f in catalog order.
func Select(f Filter) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Names returns the market hash names of the items matching f in catalog order.
func Names(f Filter) []string {
	sel := Select(f)
	out := make([]string, len(sel))
	for i, it := range sel {
		out[i] = it.Name
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Display names
// ─────────────────────────────────────────────────────────────────────────────

var displaySuffixes = []struct{ long, short string }{
	{" Weapon Case", " Case"},
	{" Souvenir Package", " Souvenir"},
}

// DisplayName shortens a market hash name for presentation: runs of
// whitespace collapse to a single space, " Weapon Case" becomes " Case" and
// " Souvenir Package" becomes " Souvenir". A blank input is returned as is.
func DisplayName(name string) string {
	collapsed := strings.Join(strings.Fields(name), " ")
	if collapsed == "" {
		return name
	}
	for _, s := range displaySuffixes {
		if strings.HasSuffix(collapsed, s.long) {
			return strings.TrimSuffix(collapsed, s.long) + s.short
		}
	}
	return collapsed
}

// ─────────────────────────────────────────────────────────────────────────────
// Filter
// ─────────────────────────────────────────────────────────────────────────────

// Filter selects catalog items by free-text query and type. The zero value
// matches everything.
type Filter struct {
	Query string
	Type  Type
}

// Match reports whether it satisfies f. The query is matched as a substring
// of the name, ignoring case and diacritics.
func (f Filter) Match(it Item) bool {
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return true
	}
	return strings.Contains(fold(it.Name), fold(q))
}

// fold decomposes s (NFKD), drops combining marks and case-folds the rest.
// A Caser is stateful, so one is built per call.
func fold(s string) string {
	decomposed := norm.NFKD.String(s)
	var sb strings.Builder
	sb.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return cases.Fold().String(sb.String())
}

//Personal.AI order the ending
