package handlers

import (
	"net/http"

	"github.com/turtacn/casefolio/internal/application/portfolio"
	"github.com/turtacn/casefolio/internal/application/pricing"
	"github.com/turtacn/casefolio/internal/domain/catalog"
	"github.com/turtacn/casefolio/internal/domain/currency"
	"github.com/turtacn/casefolio/pkg/errors"
)

// CatalogHandler lists the tracked items with their last known prices.
type CatalogHandler struct {
	portfolioSvc portfolio.Service
	pricingSvc   pricing.Service
	formatter    *currency.Formatter
}

func NewCatalogHandler(portfolioSvc portfolio.Service, pricingSvc pricing.Service, formatter *currency.Formatter) *CatalogHandler {
	if formatter == nil {
		formatter = currency.NewFormatter("")
	}
	return &CatalogHandler{portfolioSvc: portfolioSvc, pricingSvc: pricingSvc, formatter: formatter}
}

type CatalogItem struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        catalog.Type `json:"type"`
	PriceCents  int64        `json:"price_cents"`
	Price       string       `json:"price"`
	Quantity    int          `json:"quantity"`
}

type CatalogResponse struct {
	Items []CatalogItem `json:"items"`
	Total int           `json:"total"`
}

type NameIDResponse struct {
	Name   string `json:"name"`
	NameID int64  `json:"name_id"`
}

// List handles GET /api/catalog?type=case|capsule&q=text.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{Query: q.Get("q")}
	if ts := q.Get("type"); ts != "" {
		t, ok := catalog.ParseType(ts)
		if !ok {
			writeAppError(w, errors.InvalidParam("type must be case or capsule").WithDetail(ts))
			return
		}
		f.Type = t
	}

	rec := h.portfolioSvc.Snapshot()
	items := catalog.Select(f)
	resp := CatalogResponse{Items: make([]CatalogItem, len(items)), Total: len(items)}
	for i, it := range items {
		cents := rec.Price(it.Name)
		resp.Items[i] = CatalogItem{
			Name:        it.Name,
			DisplayName: catalog.DisplayName(it.Name),
			Type:        it.Type,
			PriceCents:  cents,
			Price:       h.formatter.Format(cents),
			Quantity:    rec.Items[it.Name].Quantity,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// NameID handles GET /api/catalog/nameid?item=<name>.
func (h *CatalogHandler) NameID(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("item")
	id, err := h.pricingSvc.NameID(r.Context(), name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NameIDResponse{Name: name, NameID: id})
}

//Personal.AI order the ending
