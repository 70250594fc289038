package client

import (
	"context"
	"net/url"
)

// CatalogClient lists the tracked items.
type CatalogClient struct {
	client *Client
}

// ListOptions filters the catalog. Type is "case" or "capsule".
type ListOptions struct {
	Type  string
	Query string
}

func (c *CatalogClient) List(ctx context.Context, opts *ListOptions) ([]CatalogItem, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Type != "" {
			q.Set("type", opts.Type)
		}
		if opts.Query != "" {
			q.Set("q", opts.Query)
		}
	}
	path := "/api/catalog"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp struct {
		Items []CatalogItem `json:"items"`
	}
	if err := c.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// NameID resolves the market listing id of name.
func (c *CatalogClient) NameID(ctx context.Context, name string) (int64, error) {
	var resp struct {
		NameID int64 `json:"name_id"`
	}
	if err := c.client.get(ctx, "/api/catalog/nameid?item="+url.QueryEscape(name), &resp); err != nil {
		return 0, err
	}
	return resp.NameID, nil
}

//Personal.AI order the ending
