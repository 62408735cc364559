// Package errors provides error wrapping utilities and the failure kinds the
// upload pipeline distinguishes between.
package errors

import (
	"errors"
	"fmt"
)

// Failure kinds. Per-file failures wrap one of these so callers can classify
// them with errors.Is while still carrying the remote message.
var (
	// ErrDirectoryUnreadable means the images directory is missing or not a
	// directory. Raised before any file is processed and fatal to the run.
	ErrDirectoryUnreadable = errors.New("images directory unreadable")

	// ErrProductNotFound means no product matched the file's handle.
	ErrProductNotFound = errors.New("product not found")

	// ErrUploadTargetRejected means stagedUploadsCreate reported a field-level
	// user error instead of returning a target.
	ErrUploadTargetRejected = errors.New("staged upload rejected")

	// ErrUploadFailed means the storage endpoint answered with a status other
	// than the configured success status.
	ErrUploadFailed = errors.New("file upload failed")

	// ErrMediaRejected means productCreateMedia reported a media user error.
	ErrMediaRejected = errors.New("media attach rejected")

	// ErrRemoteQuery is the generic transport/API failure carrying the remote
	// message.
	ErrRemoteQuery = errors.New("admin API request failed")

	// ErrMalformedReply means the remote reply decoded but was missing the
	// fields the operation requires.
	ErrMalformedReply = errors.New("admin API reply malformed")
)

// Wrap wraps an error with additional context information.
// If err is nil, it returns nil without wrapping.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
