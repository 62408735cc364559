package shopify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/wovenhouse/shopmedia/pkg/errors"
)

const stagedUploadsCreateMutation = `mutation StageUpload($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters {
        name
        value
      }
    }
    userErrors {
      field
      message
    }
  }
}`

type stagedUploadsData struct {
	StagedUploadsCreate struct {
		StagedTargets []StagedTarget `json:"stagedTargets"`
		UserErrors    []UserError    `json:"userErrors"`
	} `json:"stagedUploadsCreate"`
}

// CreateStagedUpload declares an upload intent for one image file and returns
// the reserved target. The remote holds the reservation briefly; the caller
// consumes it immediately or abandons it.
func (c *Client) CreateStagedUpload(ctx context.Context, filename, mimeType string, size int64) (*StagedTarget, error) {
	slog.Info("staged_upload_create_start", "filename", filename, "mime_type", mimeType, "size_bytes", size)

	input := []map[string]any{{
		"filename":   filename,
		"mimeType":   mimeType,
		"resource":   "IMAGE",
		"httpMethod": "POST",
		"fileSize":   strconv.FormatInt(size, 10),
	}}

	var data stagedUploadsData
	err := c.query(ctx, "stagedUploadsCreate", stagedUploadsCreateMutation, map[string]any{
		"input": input,
	}, &data)
	if err != nil {
		return nil, err
	}

	result := data.StagedUploadsCreate
	if len(result.UserErrors) > 0 {
		first := result.UserErrors[0]
		slog.Error("staged_upload_rejected",
			"filename", filename,
			"field", strings.Join(first.Field, "."),
			"message", first.Message)
		return nil, fmt.Errorf("%w: %s", errors.ErrUploadTargetRejected, first.Message)
	}
	if len(result.StagedTargets) == 0 {
		return nil, fmt.Errorf("%w: no staged target returned", errors.ErrMalformedReply)
	}

	target := result.StagedTargets[0]
	if target.URL == "" || target.ResourceURL == "" {
		return nil, fmt.Errorf("%w: staged target missing url", errors.ErrMalformedReply)
	}

	slog.Info("staged_upload_created",
		"filename", filename,
		"url", target.URL,
		"parameter_count", len(target.Parameters))
	return &target, nil
}
