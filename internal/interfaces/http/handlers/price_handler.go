package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/casefolio/internal/application/pricing"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/pkg/errors"
)

// PriceHandler proxies market price lookups.
type PriceHandler struct {
	pricingSvc  pricing.Service
	logger      logging.Logger
	maxBodySize int64
}

func NewPriceHandler(svc pricing.Service, logger logging.Logger, maxBodySize int64) *PriceHandler {
	return &PriceHandler{pricingSvc: svc, logger: logger, maxBodySize: maxBodySize}
}

// BatchPriceRequest is the body of POST /api/prices.
type BatchPriceRequest struct {
	Items json.RawMessage `json:"items"`
}

// BatchPriceResponse wraps the per-item results in request order.
type BatchPriceResponse struct {
	Results []pricing.BatchResult `json:"results"`
}

var errItemsRequired = errors.New(errors.ErrCodeBadRequest, "Items array required")

// Get handles GET /api/prices?item=<name>. The upstream document is relayed
// unchanged.
func (h *PriceHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw, err := h.pricingSvc.Quote(r.Context(), r.URL.Query().Get("item"))
	if err != nil {
		writePriceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// Batch handles POST /api/prices with {"items": [...]}.
func (h *PriceHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchPriceRequest
	if err := decodeJSON(r, h.maxBodySize, &req); err != nil {
		writePriceError(w, errItemsRequired)
		return
	}
	var names []string
	if len(req.Items) == 0 || string(req.Items) == "null" || json.Unmarshal(req.Items, &names) != nil {
		writePriceError(w, errItemsRequired)
		return
	}

	results := h.pricingSvc.Batch(r.Context(), names)
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	h.logger.Debug("Batch price fetch", logging.Int("items", len(names)), logging.Int("failed", failed))
	writeJSON(w, http.StatusOK, BatchPriceResponse{Results: results})
}

//Personal.AI order the ending
