package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/casefolio/internal/application/portfolio"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/pkg/errors"
)

// PortfolioHandler handles HTTP requests for portfolio operations.
type PortfolioHandler struct {
	portfolioSvc portfolio.Service
	logger       logging.Logger
	maxBodySize  int64
}

func NewPortfolioHandler(svc portfolio.Service, logger logging.Logger, maxBodySize int64) *PortfolioHandler {
	return &PortfolioHandler{portfolioSvc: svc, logger: logger, maxBodySize: maxBodySize}
}

// AddItemRequest is the body of POST /api/portfolio/items. Price is in cents;
// when omitted the last known price is kept.
type AddItemRequest struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity,omitempty"`
	Price    *int64 `json:"price,omitempty"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// Get handles GET /api/portfolio.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.portfolioSvc.Summary())
}

// Record handles GET /api/portfolio/record and returns the stored shape.
func (h *PortfolioHandler) Record(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.portfolioSvc.Snapshot())
}

// AddItem handles POST /api/portfolio/items.
func (h *PortfolioHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(r, h.maxBodySize, &req); err != nil {
		writeAppError(w, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	_, err := h.portfolioSvc.Add(r.Context(), &portfolio.AddInput{
		Name:       req.Name,
		Quantity:   qty,
		PriceCents: req.Price,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.portfolioSvc.Summary())
}

// UpdateItem handles PUT /api/portfolio/items/{name}.
func (h *PortfolioHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	name := itemParam(r)
	var req UpdateItemRequest
	if err := decodeJSON(r, h.maxBodySize, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.Quantity == nil {
		writeAppError(w, errors.MissingParam("quantity is required"))
		return
	}

	if _, err := h.portfolioSvc.SetQuantity(r.Context(), name, *req.Quantity); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.portfolioSvc.Summary())
}

// RemoveItem handles DELETE /api/portfolio/items/{name}. Removing an item
// that is not held is not an error.
func (h *PortfolioHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.portfolioSvc.Remove(r.Context(), itemParam(r)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.portfolioSvc.Summary())
}

// itemParam returns the decoded {name} segment. chi matches on RawPath when
// the name needed non-default escaping, so the value may still be escaped.
func itemParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

//Personal.AI order the ending
