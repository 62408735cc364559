// Package storage posts image bytes to negotiated staged upload targets.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/wovenhouse/shopmedia/pkg/errors"
	"github.com/wovenhouse/shopmedia/pkg/shopify"
)

// DefaultSuccessStatus is what most staged targets answer on a successful
// POST. Some providers answer 204 instead, so the expected status is
// configuration, not a universal constant.
const DefaultSuccessStatus = http.StatusCreated

// UploadError reports a storage endpoint reply with an unexpected status.
// The response body is kept for diagnostics.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("storage endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Unwrap ties UploadError to the ErrUploadFailed kind.
func (e *UploadError) Unwrap() error { return errors.ErrUploadFailed }

// Uploader performs multipart POSTs against staged upload targets.
type Uploader struct {
	httpClient    *http.Client
	successStatus int
}

// NewUploader builds an uploader expecting successStatus from the storage
// endpoint. Zero means DefaultSuccessStatus.
func NewUploader(successStatus int) *Uploader {
	if successStatus == 0 {
		successStatus = DefaultSuccessStatus
	}
	return &Uploader{
		httpClient:    &http.Client{},
		successStatus: successStatus,
	}
}

// Upload sends the negotiated parameters, in the order received, followed by
// the file bytes as the single "file" field. The encoded body length is set
// explicitly on the request; staged endpoints reject uploads without it.
// On success the resource URL recorded in the target is returned. The upload
// reply body is never parsed for it.
//
// A failed attempt is not retried: the target may be unusable afterwards and
// re-negotiation is the caller's responsibility.
func (u *Uploader) Upload(ctx context.Context, target *shopify.StagedTarget, filePath string) (string, error) {
	slog.Info("upload_start", "url", target.URL, "file", filePath)

	f, err := os.Open(filePath)
	if err != nil {
		slog.Error("upload_open_failed", "file", filePath, "error", err)
		return "", errors.Wrap(err, "open image file")
	}
	defer f.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	for _, p := range target.Parameters {
		if err := form.WriteField(p.Name, p.Value); err != nil {
			return "", errors.Wrap(err, "write form field")
		}
	}

	part, err := form.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", errors.Wrap(err, "create file field")
	}
	fileBytes, err := io.Copy(part, f)
	if err != nil {
		slog.Error("upload_read_failed", "file", filePath, "error", err)
		return "", errors.Wrap(err, "read image file")
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, "finalize form")
	}

	encodedLen := int64(body.Len())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return "", errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.ContentLength = encodedLen

	resp, err := u.httpClient.Do(req)
	if err != nil {
		slog.Error("upload_request_failed", "url", target.URL, "error", err)
		return "", fmt.Errorf("%w: %v", errors.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != u.successStatus {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Error("upload_rejected",
			"url", target.URL,
			"status", resp.StatusCode,
			"want_status", u.successStatus,
			"body", string(respBody))
		return "", &UploadError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	slog.Info("upload_complete",
		"file", filePath,
		"file_bytes", fileBytes,
		"body_bytes", encodedLen,
		"resource_url", target.ResourceURL)
	return target.ResourceURL, nil
}
