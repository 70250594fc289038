package client

import (
	"context"
	"net/url"
)

// PortfolioClient manages holdings.
type PortfolioClient struct {
	client *Client
}

type AddItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity,omitempty"`
	// Price in cents; nil keeps the last known price.
	Price *int64 `json:"price,omitempty"`
}

func (p *PortfolioClient) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	if err := p.client.get(ctx, "/api/portfolio", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PortfolioClient) Record(ctx context.Context) (*Record, error) {
	var r Record
	if err := p.client.get(ctx, "/api/portfolio/record", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PortfolioClient) Add(ctx context.Context, req *AddItemRequest) (*Summary, error) {
	var s Summary
	if err := p.client.post(ctx, "/api/portfolio/items", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PortfolioClient) SetQuantity(ctx context.Context, name string, quantity int) (*Summary, error) {
	var s Summary
	body := map[string]int{"quantity": quantity}
	if err := p.client.put(ctx, "/api/portfolio/items/"+url.PathEscape(name), body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PortfolioClient) Remove(ctx context.Context, name string) (*Summary, error) {
	var s Summary
	if err := p.client.delete(ctx, "/api/portfolio/items/"+url.PathEscape(name), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

//Personal.AI order the ending
