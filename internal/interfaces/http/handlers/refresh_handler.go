package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/casefolio/internal/application/refresh"
	"github.com/turtacn/casefolio/internal/domain/catalog"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/pkg/errors"
)

// RefreshController is the part of the refresh coordinator the API drives.
type RefreshController interface {
	Start(ctx context.Context, items []catalog.Item) (*refresh.Run, error)
	Cancel() error
	Status() refresh.Status
}

// RefreshHandler starts, inspects and cancels price refresh runs. Runs are
// bound to baseCtx rather than the request so they outlive it.
type RefreshHandler struct {
	coordinator RefreshController
	baseCtx     context.Context
	logger      logging.Logger
	maxBodySize int64
}

func NewRefreshHandler(baseCtx context.Context, c RefreshController, logger logging.Logger, maxBodySize int64) *RefreshHandler {
	return &RefreshHandler{coordinator: c, baseCtx: baseCtx, logger: logger, maxBodySize: maxBodySize}
}

// StartRefreshRequest narrows a run to named items or one catalog type.
// An empty body refreshes the whole catalog.
type StartRefreshRequest struct {
	Items []string `json:"items,omitempty"`
	Type  string   `json:"type,omitempty"`
}

// Start handles POST /api/refresh.
func (h *RefreshHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRefreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, h.maxBodySize, &req); err != nil {
			writeAppError(w, err)
			return
		}
	}
	items, err := resolveItems(req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run, err := h.coordinator.Start(h.baseCtx, items)
	if err != nil {
		writeAppError(w, err)
		return
	}
	h.logger.Info("Refresh requested", logging.String("run_id", run.ID()), logging.String("request_id", logging.RequestIDFromContext(r.Context())))
	writeJSON(w, http.StatusAccepted, h.coordinator.Status())
}

// Status handles GET /api/refresh.
func (h *RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.Status())
}

// Cancel handles DELETE /api/refresh.
func (h *RefreshHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.Cancel(); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.coordinator.Status())
}

func resolveItems(req StartRefreshRequest) ([]catalog.Item, error) {
	if len(req.Items) > 0 {
		items := make([]catalog.Item, 0, len(req.Items))
		for _, name := range req.Items {
			if it, ok := catalog.Lookup(name); ok {
				items = append(items, it)
				continue
			}
			if name == "" {
				return nil, errors.InvalidParam("item names must not be empty")
			}
			items = append(items, catalog.Item{Name: name})
		}
		return items, nil
	}
	if req.Type != "" {
		t, ok := catalog.ParseType(req.Type)
		if !ok {
			return nil, errors.InvalidParam("type must be case or capsule").WithDetail(req.Type)
		}
		return catalog.Select(catalog.Filter{Type: t}), nil
	}
	return nil, nil
}

//Personal.AI order the ending
