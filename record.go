package scrapedoc

import (
	"context"
	"time"
)

// Page is a fetched page's markup plus the URL it was fetched from.
// Pages are transient and never persisted.
type Page struct {
	URL  string
	HTML string
}

// Record is the pipeline's output unit: one extracted detail page.
type Record struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	SourceURL   string `json:"source_url"`
	Author      string `json:"author"`
	Date        string `json:"date,omitempty"`

	// UserID is assigned downstream and always emitted empty by the pipeline.
	UserID string `json:"user_id"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.SourceURL == "" {
		return Errorf(EINVALID, "record source URL required")
	}
	if r.Content == "" {
		return Errorf(EINVALID, "record content required")
	}
	return nil
}

// RecordStore persists records with atomic semantics.
// Save stages a record; Commit makes staged records permanent;
// Abort discards them.
type RecordStore interface {
	Save(ctx context.Context, record *Record) error
	Commit() error
	Abort() error
}

// StoredRecord is a Record persisted in the record history.
type StoredRecord struct {
	ID          string    `json:"id"`
	Site        string    `json:"site"`
	Source      string    `json:"source"`
	ContentHash string    `json:"contentHash"`
	ScrapedAt   time.Time `json:"scrapedAt"`
	Record
}

// RecordService represents a service for the history of scraped records.
type RecordService interface {
	// CreateRecord stores a record, generating its ID, hash and timestamp.
	CreateRecord(ctx context.Context, record *StoredRecord) error

	// FindRecordByID retrieves a record by ID.
	// Returns ENOTFOUND if the record does not exist.
	FindRecordByID(ctx context.Context, id string) (*StoredRecord, error)

	// FindRecords retrieves records matching the filter, newest first.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*StoredRecord, error)
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	Site      *string `json:"site"`
	Source    *string `json:"source"`
	SourceURL *string `json:"sourceUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
