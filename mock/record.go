package mock

import (
	"context"

	"github.com/fwojciec/scrapedoc"
)

// Compile-time interface verification.
var (
	_ scrapedoc.RecordStore   = (*RecordStore)(nil)
	_ scrapedoc.RecordService = (*RecordService)(nil)
)

// RecordStore is a mock implementation of scrapedoc.RecordStore.
type RecordStore struct {
	SaveFn   func(ctx context.Context, record *scrapedoc.Record) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *RecordStore) Save(ctx context.Context, record *scrapedoc.Record) error {
	return s.SaveFn(ctx, record)
}

func (s *RecordStore) Commit() error {
	return s.CommitFn()
}

func (s *RecordStore) Abort() error {
	return s.AbortFn()
}

// RecordService is a mock implementation of scrapedoc.RecordService.
type RecordService struct {
	CreateRecordFn   func(ctx context.Context, record *scrapedoc.StoredRecord) error
	FindRecordByIDFn func(ctx context.Context, id string) (*scrapedoc.StoredRecord, error)
	FindRecordsFn    func(ctx context.Context, filter scrapedoc.RecordFilter) ([]*scrapedoc.StoredRecord, error)
}

func (s *RecordService) CreateRecord(ctx context.Context, record *scrapedoc.StoredRecord) error {
	return s.CreateRecordFn(ctx, record)
}

func (s *RecordService) FindRecordByID(ctx context.Context, id string) (*scrapedoc.StoredRecord, error) {
	return s.FindRecordByIDFn(ctx, id)
}

func (s *RecordService) FindRecords(ctx context.Context, filter scrapedoc.RecordFilter) ([]*scrapedoc.StoredRecord, error) {
	return s.FindRecordsFn(ctx, filter)
}
