package db

// Schema defines the SQLite database schema for the upload ledger.
// Every processed file gets one row per run; rows are never reused
// across runs, so re-running over the same directory appends fresh
// attempts instead of resuming old ones.
const Schema = `
CREATE TABLE IF NOT EXISTS uploads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    file_name TEXT NOT NULL,
    handle TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL CHECK(status IN ('pending', 'resolving', 'staging', 'uploading', 'attaching', 'done', 'failed')),
    product_id TEXT,
    resource_url TEXT,
    media_id TEXT,
    error_message TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_uploads_run_id ON uploads(run_id);
CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
`

// Status constants
const (
	StatusPending   = "pending"
	StatusResolving = "resolving"
	StatusStaging   = "staging"
	StatusUploading = "uploading"
	StatusAttaching = "attaching"
	StatusDone      = "done"
	StatusFailed    = "failed"
)

// Upload represents one attempt to attach an image file to a product
type Upload struct {
	ID           int64
	RunID        string
	FileName     string
	Handle       string
	MimeType     string
	SizeBytes    int64
	Status       string
	ProductID    string
	ResourceURL  string
	MediaID      string
	ErrorMessage string
	CreatedAt    string
	UpdatedAt    string
}
