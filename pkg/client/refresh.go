package client

import (
	"context"
	"time"
)

// RefreshClient drives server-side price refresh runs.
type RefreshClient struct {
	client *Client
}

// StartRequest narrows a run. The zero value refreshes the whole catalog.
type StartRequest struct {
	Items []string `json:"items,omitempty"`
	Type  string   `json:"type,omitempty"`
}

func (r *RefreshClient) Start(ctx context.Context, req *StartRequest) (*RefreshStatus, error) {
	if req == nil {
		req = &StartRequest{}
	}
	var st RefreshStatus
	if err := r.client.post(ctx, "/api/refresh", req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *RefreshClient) Status(ctx context.Context) (*RefreshStatus, error) {
	var st RefreshStatus
	if err := r.client.get(ctx, "/api/refresh", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *RefreshClient) Cancel(ctx context.Context) (*RefreshStatus, error) {
	var st RefreshStatus
	if err := r.client.delete(ctx, "/api/refresh", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Wait polls Status every interval until no run is in progress. progress,
// when non-nil, sees every polled status.
func (r *RefreshClient) Wait(ctx context.Context, interval time.Duration, progress func(*RefreshStatus)) (*RefreshStatus, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := r.Status(ctx)
		if err != nil {
			return nil, err
		}
		if progress != nil {
			progress(st)
		}
		if !st.Running {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

//Personal.AI order the ending
