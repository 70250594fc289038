package market

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"

	"github.com/turtacn/casefolio/internal/domain/currency"
	"github.com/turtacn/casefolio/pkg/errors"
)

// FieldPaths locate the quote fields inside a priceoverview document.
type FieldPaths struct {
	Success     string
	LowestPrice string
	MedianPrice string
	Volume      string
}

func DefaultFieldPaths() FieldPaths {
	return FieldPaths{
		Success:     "$.success",
		LowestPrice: "$.lowest_price",
		MedianPrice: "$.median_price",
		Volume:      "$.volume",
	}
}

// Quote is the decoded subset of a priceoverview document. Absent fields
// stay empty.
type Quote struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price,omitempty"`
	MedianPrice string `json:"median_price,omitempty"`
	Volume      string `json:"volume,omitempty"`
}

// MedianCents parses the median price; 0 when absent.
func (q Quote) MedianCents() int64 {
	return currency.ParsePriceToNumber(q.MedianPrice)
}

// LowestCents parses the lowest price; 0 when absent.
func (q Quote) LowestCents() int64 {
	return currency.ParsePriceToNumber(q.LowestPrice)
}

// HasMedian reports whether the quote is usable for valuation.
func (q Quote) HasMedian() bool {
	return q.Success && q.MedianPrice != ""
}

type Decoder struct {
	paths FieldPaths
}

// NewDecoder validates every expression; empty ones take the default path.
func NewDecoder(paths FieldPaths) (*Decoder, error) {
	def := DefaultFieldPaths()
	for _, p := range []struct {
		field *string
		def   string
	}{
		{&paths.Success, def.Success},
		{&paths.LowestPrice, def.LowestPrice},
		{&paths.MedianPrice, def.MedianPrice},
		{&paths.Volume, def.Volume},
	} {
		if *p.field == "" {
			*p.field = p.def
		}
		if _, err := jsonpath.New(*p.field); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid quote field path").WithDetail(*p.field)
		}
	}
	return &Decoder{paths: paths}, nil
}

var defaultDecoder = &Decoder{paths: DefaultFieldPaths()}

// DecodeQuote decodes raw with the default field paths.
func DecodeQuote(raw json.RawMessage) (Quote, error) {
	return defaultDecoder.Decode(raw)
}

func (d *Decoder) Decode(raw json.RawMessage) (Quote, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Quote{}, errors.Wrap(err, errors.ErrCodeUpstreamResponse, "failed to decode quote")
	}
	if _, ok := doc.(map[string]interface{}); !ok {
		return Quote{}, errors.New(errors.ErrCodeUpstreamResponse, "quote is not a JSON object")
	}

	q := Quote{
		LowestPrice: lookupString(d.paths.LowestPrice, doc),
		MedianPrice: lookupString(d.paths.MedianPrice, doc),
		Volume:      lookupString(d.paths.Volume, doc),
	}
	if v, ok := lookup(d.paths.Success, doc).(bool); ok {
		q.Success = v
	}
	return q, nil
}

// lookup returns nil when the path does not resolve.
func lookup(path string, doc interface{}) interface{} {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	// a filter or wildcard expression yields a list; keep its first element.
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func lookupString(path string, doc interface{}) string {
	switch v := lookup(path, doc).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

//Personal.AI order the ending
