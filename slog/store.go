package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/scrapedoc"
)

// Ensure LoggingRecordStore implements scrapedoc.RecordStore.
var _ scrapedoc.RecordStore = (*LoggingRecordStore)(nil)

// LoggingRecordStore wraps a RecordStore with logging and counts saved records.
type LoggingRecordStore struct {
	next   scrapedoc.RecordStore
	logger *slog.Logger
	saved  int
}

// NewLoggingRecordStore creates a new LoggingRecordStore.
func NewLoggingRecordStore(next scrapedoc.RecordStore, logger *slog.Logger) *LoggingRecordStore {
	return &LoggingRecordStore{next: next, logger: logger}
}

// Save delegates to the wrapped store and logs failures.
func (s *LoggingRecordStore) Save(ctx context.Context, record *scrapedoc.Record) error {
	if err := s.next.Save(ctx, record); err != nil {
		s.logger.Error("save record", "url", record.SourceURL, "err", err)
		return err
	}
	s.saved++
	s.logger.Debug("save record", "url", record.SourceURL, "bytes", len(record.Content))
	return nil
}

// Commit delegates to the wrapped store and logs the number of records written.
func (s *LoggingRecordStore) Commit() (err error) {
	defer func() {
		s.logger.Info("commit records", "count", s.saved, "err", err)
	}()
	return s.next.Commit()
}

// Abort delegates to the wrapped store and logs the number of records discarded.
func (s *LoggingRecordStore) Abort() (err error) {
	defer func() {
		s.logger.Warn("abort records", "count", s.saved, "err", err)
	}()
	return s.next.Abort()
}
