// Package fsm implements the per-file upload workflow as a finite state
// machine. Each image file walks resolve, stage, upload, and attach in
// order using the superfly/fsm library; the first failing step marks the
// file failed and the machine is never retried.
package fsm

import (
	"context"

	"github.com/superfly/fsm"
	"github.com/wovenhouse/shopmedia/pkg/errors"
)

// Register registers the product media upload FSM
func (m *Machine) Register(ctx context.Context, manager *fsm.Manager) (fsm.Start[UploadRequest, UploadResponse], fsm.Resume, error) {
	start, resume, err := fsm.Register[UploadRequest, UploadResponse](manager, "product-media-upload").
		Start(StateResolve, m.handleResolve).
		To(StateStage, m.handleStage).
		To(StateUpload, m.handleUpload).
		To(StateAttach, m.handleAttach).
		To(StateComplete, m.handleComplete).
		End(StateFailed).
		Build(ctx)

	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to register FSM")
	}

	return start, resume, nil
}
