package shopify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wovenhouse/shopmedia/pkg/errors"
)

const productsByHandleQuery = `query FindProductByHandle($query: String!) {
  products(first: 1, query: $query) {
    edges {
      node {
        id
        title
      }
    }
  }
}`

type productsData struct {
	Products struct {
		Edges []struct {
			Node struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// ResolveProductByHandle returns the opaque ID of the product whose handle
// matches. The handle must resolve before an upload target is negotiated.
func (c *Client) ResolveProductByHandle(ctx context.Context, handle string) (string, error) {
	slog.Info("product_resolve_start", "handle", handle)

	var data productsData
	err := c.query(ctx, "products", productsByHandleQuery, map[string]any{
		"query": "handle:" + handle,
	}, &data)
	if err != nil {
		return "", err
	}

	edges := data.Products.Edges
	if len(edges) == 0 {
		slog.Info("product_not_found", "handle", handle)
		return "", fmt.Errorf("%w: handle %q", errors.ErrProductNotFound, handle)
	}

	node := edges[0].Node
	if node.ID == "" {
		return "", fmt.Errorf("%w: product edge missing id", errors.ErrMalformedReply)
	}

	slog.Info("product_resolved", "handle", handle, "product_id", node.ID, "title", node.Title)
	return node.ID, nil
}
