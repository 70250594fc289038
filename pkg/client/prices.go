package client

import (
	"context"
	"encoding/json"
	"net/url"
)

// PricesClient calls the market price proxy.
type PricesClient struct {
	client *Client
}

// GetRaw returns the upstream price document unchanged.
func (p *PricesClient) GetRaw(ctx context.Context, name string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.client.get(ctx, "/api/prices?item="+url.QueryEscape(name), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (p *PricesClient) Get(ctx context.Context, name string) (*Quote, error) {
	raw, err := p.GetRaw(ctx, name)
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Batch fetches several items in one request. Failed items come back with
// Success false.
func (p *PricesClient) Batch(ctx context.Context, names []string) ([]BatchQuote, error) {
	if names == nil {
		names = []string{}
	}
	var resp struct {
		Results []BatchQuote `json:"results"`
	}
	if err := p.client.post(ctx, "/api/prices", map[string][]string{"items": names}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

//Personal.AI order the ending
