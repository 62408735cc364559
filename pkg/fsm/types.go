package fsm

import "github.com/wovenhouse/shopmedia/pkg/shopify"

// UploadRequest is the FSM input
type UploadRequest struct {
	RecordID int64
	Path     string
	FileName string
	Handle   string
	MimeType string
	Size     int64
	AltText  string
}

// UploadResponse is the FSM output (accumulated across transitions)
type UploadResponse struct {
	// From Resolve
	ProductID string

	// From Stage
	UploadURL   string
	ResourceURL string
	Parameters  []shopify.StagedParameter

	// From Attach
	MediaID     string
	MediaStatus string

	// From Complete/Failed
	Status       string
	ErrorMessage string
}

// State names
const (
	StateResolve  = "resolve"
	StateStage    = "stage"
	StateUpload   = "upload"
	StateAttach   = "attach"
	StateComplete = "complete"
	StateFailed   = "failed"
)
