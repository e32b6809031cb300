package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/scrapedoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapedoc.RecordService = (*RecordService)(nil)

// timestampFormat is fixed width so stored timestamps sort lexically.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "id, site, source, source_url, title, content, content_type, author, date, content_hash, scraped_at"

// RecordService implements scrapedoc.RecordService using SQLite.
type RecordService struct {
	db *DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db}
}

// HashContent returns the hex-encoded xxHash of content.
func HashContent(content string) string {
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, xxhash.Sum64String(content)))
}

// CreateRecord stores record, assigning its ID, content hash and scrape time.
func (s *RecordService) CreateRecord(ctx context.Context, record *scrapedoc.StoredRecord) error {
	if record.Site == "" || record.Source == "" {
		return scrapedoc.Errorf(scrapedoc.EINVALID, "record site and source required")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	record.ID = uuid.New().String()
	record.ScrapedAt = time.Now().UTC()
	record.ContentHash = HashContent(record.Content)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Site, record.Source, record.SourceURL, record.Title, record.Content,
		record.ContentType, record.Author, record.Date, record.ContentHash,
		record.ScrapedAt.Format(timestampFormat))

	return err
}

// FindRecordByID retrieves a record by ID.
func (s *RecordService) FindRecordByID(ctx context.Context, id string) (*scrapedoc.StoredRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scrapedoc.Errorf(scrapedoc.ENOTFOUND, "record not found")
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindRecords retrieves records matching the filter, newest first.
func (s *RecordService) FindRecords(ctx context.Context, filter scrapedoc.RecordFilter) ([]*scrapedoc.StoredRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records WHERE 1=1")
	appendEq(&query, &args, "site", filter.Site)
	appendEq(&query, &args, "source", filter.Source)
	appendEq(&query, &args, "source_url", filter.SourceURL)
	query.WriteString(" ORDER BY scraped_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*scrapedoc.StoredRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*scrapedoc.StoredRecord, error) {
	var record scrapedoc.StoredRecord
	var scrapedAt string

	if err := row.Scan(&record.ID, &record.Site, &record.Source, &record.SourceURL, &record.Title,
		&record.Content, &record.ContentType, &record.Author, &record.Date, &record.ContentHash,
		&scrapedAt); err != nil {
		return nil, err
	}

	t, err := parseRFC3339(scrapedAt, "scraped_at")
	if err != nil {
		return nil, err
	}
	record.ScrapedAt = t

	return &record, nil
}
