package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/wovenhouse/shopmedia/pkg/errors"
	_ "modernc.org/sqlite"
)

// Repository provides database operations for the upload ledger
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("database_init", "db_path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("database_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Create schema
	slog.Info("database_create_schema", "db_path", dbPath)
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		slog.Error("database_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create schema")
	}

	slog.Info("database_ready", "db_path", dbPath)
	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a new upload record
func (r *Repository) Create(up *Upload) error {
	slog.Info("database_create_upload", "run_id", up.RunID, "file_name", up.FileName, "status", up.Status)

	query := `
		INSERT INTO uploads (run_id, file_name, handle, mime_type, size_bytes, status, product_id, resource_url, media_id, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		up.RunID, up.FileName, up.Handle, up.MimeType, up.SizeBytes,
		up.Status, up.ProductID, up.ResourceURL, up.MediaID, up.ErrorMessage)
	if err != nil {
		slog.Error("database_insert_failed", "file_name", up.FileName, "error", err)
		return errors.Wrap(err, "failed to insert upload")
	}

	id, err := result.LastInsertId()
	if err != nil {
		slog.Error("database_last_insert_id_failed", "file_name", up.FileName, "error", err)
		return errors.Wrap(err, "failed to get last insert id")
	}
	up.ID = id

	slog.Info("database_upload_created", "file_name", up.FileName, "upload_id", up.ID, "status", up.Status)
	return nil
}

// GetByID retrieves an upload by its ledger ID
func (r *Repository) GetByID(id int64) (*Upload, error) {
	query := `
		SELECT id, run_id, file_name, handle, mime_type, size_bytes, status,
		       product_id, resource_url, media_id, error_message, created_at, updated_at
		FROM uploads WHERE id = ?
	`
	var up Upload
	var productID, resourceURL, mediaID, errorMessage sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&up.ID, &up.RunID, &up.FileName, &up.Handle, &up.MimeType, &up.SizeBytes, &up.Status,
		&productID, &resourceURL, &mediaID, &errorMessage,
		&up.CreatedAt, &up.UpdatedAt)

	if err == sql.ErrNoRows {
		slog.Info("database_upload_not_found", "upload_id", id)
		return nil, nil // Not found
	}
	if err != nil {
		slog.Error("database_query_failed", "upload_id", id, "error", err)
		return nil, errors.Wrap(err, "failed to query upload")
	}

	// Handle nullable fields
	up.ProductID = productID.String
	up.ResourceURL = resourceURL.String
	up.MediaID = mediaID.String
	up.ErrorMessage = errorMessage.String

	return &up, nil
}

// UpdateStatus updates the status field, recording the failure message for
// failed rows and clearing it otherwise
func (r *Repository) UpdateStatus(id int64, status, errorMessage string) error {
	slog.Info("database_update_status", "upload_id", id, "status", status)

	query := `UPDATE uploads SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, status, errorMessage, id)
	if err != nil {
		slog.Error("database_status_update_failed", "upload_id", id, "status", status, "error", err)
		return errors.Wrap(err, "failed to update status")
	}

	slog.Info("database_status_updated", "upload_id", id, "status", status)
	return nil
}

// UpdateProduct records the product the file resolved to
func (r *Repository) UpdateProduct(id int64, productID string) error {
	query := `UPDATE uploads SET product_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, productID, id); err != nil {
		slog.Error("database_product_update_failed", "upload_id", id, "error", err)
		return errors.Wrap(err, "failed to update product id")
	}
	return nil
}

// UpdateResource records the staged resource URL handed out for the file
func (r *Repository) UpdateResource(id int64, resourceURL string) error {
	query := `UPDATE uploads SET resource_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, resourceURL, id); err != nil {
		slog.Error("database_resource_update_failed", "upload_id", id, "error", err)
		return errors.Wrap(err, "failed to update resource url")
	}
	return nil
}

// UpdateMedia records the media record created for the file
func (r *Repository) UpdateMedia(id int64, mediaID string) error {
	query := `UPDATE uploads SET media_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, mediaID, id); err != nil {
		slog.Error("database_media_update_failed", "upload_id", id, "error", err)
		return errors.Wrap(err, "failed to update media id")
	}
	return nil
}

// ListByRun retrieves all uploads for a run in processing order
func (r *Repository) ListByRun(runID string) ([]*Upload, error) {
	query := `
		SELECT id, run_id, file_name, handle, mime_type, size_bytes, status,
		       product_id, resource_url, media_id, error_message, created_at, updated_at
		FROM uploads WHERE run_id = ? ORDER BY id ASC
	`
	return r.list(query, runID)
}

// ListRecent retrieves the most recent uploads across all runs
func (r *Repository) ListRecent(limit int) ([]*Upload, error) {
	query := `
		SELECT id, run_id, file_name, handle, mime_type, size_bytes, status,
		       product_id, resource_url, media_id, error_message, created_at, updated_at
		FROM uploads ORDER BY id DESC LIMIT ?
	`
	return r.list(query, limit)
}

func (r *Repository) list(query string, args ...any) ([]*Upload, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		slog.Error("database_list_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to list uploads")
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		var up Upload
		var productID, resourceURL, mediaID, errorMessage sql.NullString

		err := rows.Scan(
			&up.ID, &up.RunID, &up.FileName, &up.Handle, &up.MimeType, &up.SizeBytes, &up.Status,
			&productID, &resourceURL, &mediaID, &errorMessage,
			&up.CreatedAt, &up.UpdatedAt)
		if err != nil {
			slog.Error("database_scan_row_failed", "error", err)
			return nil, errors.Wrap(err, "failed to scan row")
		}

		up.ProductID = productID.String
		up.ResourceURL = resourceURL.String
		up.MediaID = mediaID.String
		up.ErrorMessage = errorMessage.String

		uploads = append(uploads, &up)
	}

	if err := rows.Err(); err != nil {
		slog.Error("database_rows_error", "error", err)
		return nil, errors.Wrap(err, "rows error")
	}

	slog.Info("database_list_complete", "upload_count", len(uploads))
	return uploads, nil
}

// DeleteOlderThan removes ledger rows created more than the given number of
// days ago and reports how many were removed
func (r *Repository) DeleteOlderThan(days int) (int64, error) {
	slog.Info("database_prune_start", "days", days)

	query := `DELETE FROM uploads WHERE created_at < datetime('now', ?)`
	result, err := r.db.Exec(query, fmt.Sprintf("-%d days", days))
	if err != nil {
		slog.Error("database_prune_failed", "days", days, "error", err)
		return 0, errors.Wrap(err, "failed to prune uploads")
	}

	removed, err := result.RowsAffected()
	if err != nil {
		slog.Error("database_rows_affected_failed", "error", err)
		return 0, errors.Wrap(err, "failed to get rows affected")
	}

	slog.Info("database_prune_complete", "removed", removed)
	return removed, nil
}
