package fsm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/superfly/fsm"
	"github.com/wovenhouse/shopmedia/pkg/db"
	"github.com/wovenhouse/shopmedia/pkg/errors"
	"github.com/wovenhouse/shopmedia/pkg/shopify"
	"github.com/wovenhouse/shopmedia/pkg/storage"
)

// Machine holds dependencies for FSM transitions
type Machine struct {
	repo     *db.Repository
	shop     *shopify.Client
	uploader *storage.Uploader
}

// NewMachine creates a new FSM machine with dependencies
func NewMachine(repo *db.Repository, shop *shopify.Client, uploader *storage.Uploader) *Machine {
	return &Machine{
		repo:     repo,
		shop:     shop,
		uploader: uploader,
	}
}

// fail marks the ledger row failed with the step's error and aborts the
// machine. Every step is single-shot: a failure is terminal for the file,
// never retried.
func (m *Machine) fail(recordID int64, err error) (*fsm.Response[UploadResponse], error) {
	if dbErr := m.repo.UpdateStatus(recordID, db.StatusFailed, err.Error()); dbErr != nil {
		slog.Error("failure_record_failed", "upload_id", recordID, "error", dbErr)
	}
	return nil, fsm.Abort(err)
}

// refuseRetry aborts if the runtime re-enters a step. Steps are never safe
// to repeat: a second staged POST against a spent target or a second
// attach would duplicate remote media.
func refuseRetry(ctx context.Context, fileName string) error {
	if retries := fsm.RetryFromContext(ctx); retries > 0 {
		slog.Error("retry_refused", "file_name", fileName, "retries", retries)
		return fsm.Abort(fmt.Errorf("upload steps are single-shot, refusing retry %d", retries))
	}
	return nil
}

// handleResolve looks up the product whose handle matches the file name
func (m *Machine) handleResolve(ctx context.Context, req *fsm.Request[UploadRequest, UploadResponse]) (*fsm.Response[UploadResponse], error) {
	slog.Info("fsm_state_resolve", "file_name", req.Msg.FileName, "handle", req.Msg.Handle)

	if err := refuseRetry(ctx, req.Msg.FileName); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		resp = &UploadResponse{}
	}

	if err := m.repo.UpdateStatus(req.Msg.RecordID, db.StatusResolving, ""); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to update status"))
	}

	productID, err := m.shop.ResolveProductByHandle(ctx, req.Msg.Handle)
	if err != nil {
		slog.Error("resolve_failed", "file_name", req.Msg.FileName, "handle", req.Msg.Handle, "error", err)
		return m.fail(req.Msg.RecordID, err)
	}

	if err := m.repo.UpdateProduct(req.Msg.RecordID, productID); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to record product"))
	}

	resp.ProductID = productID
	return fsm.NewResponse(resp), nil
}

// handleStage negotiates a staged upload target for the file
func (m *Machine) handleStage(ctx context.Context, req *fsm.Request[UploadRequest, UploadResponse]) (*fsm.Response[UploadResponse], error) {
	slog.Info("fsm_state_stage", "file_name", req.Msg.FileName, "mime_type", req.Msg.MimeType, "size_bytes", req.Msg.Size)

	if err := refuseRetry(ctx, req.Msg.FileName); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	if err := m.repo.UpdateStatus(req.Msg.RecordID, db.StatusStaging, ""); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to update status"))
	}

	target, err := m.shop.CreateStagedUpload(ctx, req.Msg.FileName, req.Msg.MimeType, req.Msg.Size)
	if err != nil {
		slog.Error("stage_failed", "file_name", req.Msg.FileName, "error", err)
		return m.fail(req.Msg.RecordID, err)
	}

	if err := m.repo.UpdateResource(req.Msg.RecordID, target.ResourceURL); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to record resource url"))
	}

	resp.UploadURL = target.URL
	resp.ResourceURL = target.ResourceURL
	resp.Parameters = target.Parameters
	return fsm.NewResponse(resp), nil
}

// handleUpload posts the file bytes to the staged target
func (m *Machine) handleUpload(ctx context.Context, req *fsm.Request[UploadRequest, UploadResponse]) (*fsm.Response[UploadResponse], error) {
	slog.Info("fsm_state_upload", "file_name", req.Msg.FileName, "path", req.Msg.Path)

	if err := refuseRetry(ctx, req.Msg.FileName); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	if err := m.repo.UpdateStatus(req.Msg.RecordID, db.StatusUploading, ""); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to update status"))
	}

	target := &shopify.StagedTarget{
		URL:         resp.UploadURL,
		ResourceURL: resp.ResourceURL,
		Parameters:  resp.Parameters,
	}
	resourceURL, err := m.uploader.Upload(ctx, target, req.Msg.Path)
	if err != nil {
		slog.Error("upload_failed", "file_name", req.Msg.FileName, "error", err)
		return m.fail(req.Msg.RecordID, err)
	}

	resp.ResourceURL = resourceURL
	return fsm.NewResponse(resp), nil
}

// handleAttach creates the media record on the resolved product
func (m *Machine) handleAttach(ctx context.Context, req *fsm.Request[UploadRequest, UploadResponse]) (*fsm.Response[UploadResponse], error) {
	slog.Info("fsm_state_attach", "file_name", req.Msg.FileName, "alt", req.Msg.AltText)

	if err := refuseRetry(ctx, req.Msg.FileName); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	if err := m.repo.UpdateStatus(req.Msg.RecordID, db.StatusAttaching, ""); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to update status"))
	}

	media, err := m.shop.AttachProductMedia(ctx, resp.ProductID, resp.ResourceURL, req.Msg.AltText)
	if err != nil {
		slog.Error("attach_failed", "file_name", req.Msg.FileName, "product_id", resp.ProductID, "error", err)
		return m.fail(req.Msg.RecordID, err)
	}

	if err := m.repo.UpdateMedia(req.Msg.RecordID, media.ID); err != nil {
		return m.fail(req.Msg.RecordID, errors.Wrap(err, "failed to record media id"))
	}

	resp.MediaID = media.ID
	resp.MediaStatus = media.Status
	return fsm.NewResponse(resp), nil
}

// handleComplete marks the ledger row done
func (m *Machine) handleComplete(ctx context.Context, req *fsm.Request[UploadRequest, UploadResponse]) (*fsm.Response[UploadResponse], error) {
	slog.Info("fsm_state_complete", "file_name", req.Msg.FileName)

	if err := refuseRetry(ctx, req.Msg.FileName); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		resp = &UploadResponse{}
	}

	if err := m.repo.UpdateStatus(req.Msg.RecordID, db.StatusDone, ""); err != nil {
		slog.Error("status_update_failed", "upload_id", req.Msg.RecordID, "error", err)
		return nil, errors.Wrap(err, "failed to update status")
	}
	resp.Status = db.StatusDone

	slog.Info("fsm_complete",
		"file_name", req.Msg.FileName,
		"product_id", resp.ProductID,
		"media_id", resp.MediaID,
		"status", resp.Status)

	return fsm.NewResponse(resp), nil
}
