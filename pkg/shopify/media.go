package shopify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wovenhouse/shopmedia/pkg/errors"
)

const productCreateMediaMutation = `mutation AttachProductMedia($productId: ID!, $media: [CreateMediaInput!]!) {
  productCreateMedia(productId: $productId, media: $media) {
    media {
      alt
      mediaContentType
      status
      ... on MediaImage {
        id
      }
    }
    mediaUserErrors {
      field
      message
    }
  }
}`

type productCreateMediaData struct {
	ProductCreateMedia struct {
		Media           []MediaRecord `json:"media"`
		MediaUserErrors []UserError   `json:"mediaUserErrors"`
	} `json:"productCreateMedia"`
}

// AttachProductMedia creates an image media item on the product, sourced from
// the uploaded resource URL, and returns the first created record verbatim.
// Attaching the same resource twice creates a duplicate; the remote does not
// deduplicate and neither does this client.
func (c *Client) AttachProductMedia(ctx context.Context, productID, resourceURL, altText string) (*MediaRecord, error) {
	slog.Info("media_attach_start", "product_id", productID, "resource_url", resourceURL)

	media := []map[string]any{{
		"originalSource":   resourceURL,
		"alt":              altText,
		"mediaContentType": "IMAGE",
	}}

	var data productCreateMediaData
	err := c.query(ctx, "productCreateMedia", productCreateMediaMutation, map[string]any{
		"productId": productID,
		"media":     media,
	}, &data)
	if err != nil {
		return nil, err
	}

	result := data.ProductCreateMedia
	if len(result.MediaUserErrors) > 0 {
		first := result.MediaUserErrors[0]
		slog.Error("media_attach_rejected",
			"product_id", productID,
			"field", strings.Join(first.Field, "."),
			"message", first.Message)
		return nil, fmt.Errorf("%w: %s", errors.ErrMediaRejected, first.Message)
	}
	if len(result.Media) == 0 {
		return nil, fmt.Errorf("%w: no media record returned", errors.ErrMalformedReply)
	}

	record := result.Media[0]
	slog.Info("media_attached",
		"product_id", productID,
		"media_id", record.ID,
		"status", record.Status)
	return &record, nil
}
