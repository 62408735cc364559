package fsm

import (
	"context"
	"log/slog"
	"time"

	"github.com/superfly/fsm"
	"github.com/wovenhouse/shopmedia/pkg/db"
	"github.com/wovenhouse/shopmedia/pkg/errors"
	"github.com/wovenhouse/shopmedia/pkg/images"
)

// Summary tallies the outcome of one run
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Driver feeds image files through the upload machine strictly one at a
// time. Files are processed in the order given; a failed file is recorded
// in the ledger and the run moves on to the next.
type Driver struct {
	start   fsm.Start[UploadRequest, UploadResponse]
	manager *fsm.Manager
	repo    *db.Repository
	delay   time.Duration
}

// NewDriver creates a driver. The delay is observed between consecutive
// files to stay under remote API rate limits, never after the last one.
func NewDriver(start fsm.Start[UploadRequest, UploadResponse], manager *fsm.Manager, repo *db.Repository, delay time.Duration) *Driver {
	return &Driver{
		start:   start,
		manager: manager,
		repo:    repo,
		delay:   delay,
	}
}

// Run appends a ledger row for every file and walks each through the
// machine. The returned summary counts outcomes; per-file detail lives in
// the ledger under runID.
func (d *Driver) Run(ctx context.Context, runID string, files []images.ImageFile) (*Summary, error) {
	slog.Info("run_start", "run_id", runID, "file_count", len(files), "delay", d.delay.String())

	summary := &Summary{}
	for i, file := range files {
		if i > 0 && d.delay > 0 {
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}

		summary.Attempted++
		resp, err := d.processFile(ctx, runID, file)
		if err != nil {
			summary.Failed++
			slog.Error("file_failed", "run_id", runID, "file_name", file.Name, "error", err)
			continue
		}

		summary.Succeeded++
		slog.Info("file_uploaded",
			"run_id", runID,
			"file_name", file.Name,
			"product_id", resp.ProductID,
			"media_id", resp.MediaID)
	}

	slog.Info("run_complete",
		"run_id", runID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
	return summary, nil
}

func (d *Driver) processFile(ctx context.Context, runID string, file images.ImageFile) (*UploadResponse, error) {
	record := &db.Upload{
		RunID:     runID,
		FileName:  file.Name,
		Handle:    file.Handle,
		MimeType:  file.MimeType,
		SizeBytes: file.Size,
		Status:    db.StatusPending,
	}
	if err := d.repo.Create(record); err != nil {
		return nil, errors.Wrap(err, "failed to create ledger row")
	}

	req := &UploadRequest{
		RecordID: record.ID,
		Path:     file.Path,
		FileName: file.Name,
		Handle:   file.Handle,
		MimeType: file.MimeType,
		Size:     file.Size,
		AltText:  file.Handle,
	}
	resp := &UploadResponse{}

	version, err := d.start(ctx, runID+"/"+file.Name, fsm.NewRequest(req, resp))
	if err != nil {
		if dbErr := d.repo.UpdateStatus(record.ID, db.StatusFailed, err.Error()); dbErr != nil {
			slog.Error("failure_record_failed", "upload_id", record.ID, "error", dbErr)
		}
		return nil, errors.Wrap(err, "FSM start failed")
	}

	if err := d.manager.Wait(ctx, version); err != nil {
		return nil, err
	}

	return resp, nil
}
