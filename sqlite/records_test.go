package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/scrapedoc"
	"github.com/fwojciec/scrapedoc/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func newStoredRecord(site, source, url string) *scrapedoc.StoredRecord {
	return &scrapedoc.StoredRecord{
		Site:   site,
		Source: source,
		Record: scrapedoc.Record{
			Title:       "Heaps",
			Content:     "# Heaps\n\nA heap is a tree.",
			ContentType: "blog",
			SourceURL:   url,
			Author:      "Nil Mamano",
			Date:        "2024-01-15",
		},
	}
}

func TestRecordService_CreateRecord(t *testing.T) {
	t.Parallel()

	t.Run("creates record with generated ID, hash and timestamp", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)

		record := newStoredRecord("nilmamano.com", "dsa_blog", "https://nilmamano.com/blog/heaps")
		require.NoError(t, svc.CreateRecord(context.Background(), record))

		assert.NotEmpty(t, record.ID)
		assert.Equal(t, sqlite.HashContent(record.Content), record.ContentHash)
		assert.False(t, record.ScrapedAt.IsZero())
	})

	t.Run("returns EINVALID without site or source", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)

		record := newStoredRecord("", "dsa_blog", "https://nilmamano.com/blog/heaps")
		err := svc.CreateRecord(context.Background(), record)

		assert.Equal(t, scrapedoc.EINVALID, scrapedoc.ErrorCode(err))
	})

	t.Run("returns EINVALID for invalid record", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)

		record := newStoredRecord("nilmamano.com", "dsa_blog", "https://nilmamano.com/blog/heaps")
		record.Content = ""
		err := svc.CreateRecord(context.Background(), record)

		assert.Equal(t, scrapedoc.EINVALID, scrapedoc.ErrorCode(err))
	})
}

func TestRecordService_FindRecordByID(t *testing.T) {
	t.Parallel()

	t.Run("returns record when found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)
		ctx := context.Background()

		created := newStoredRecord("nilmamano.com", "dsa_blog", "https://nilmamano.com/blog/heaps")
		require.NoError(t, svc.CreateRecord(ctx, created))

		found, err := svc.FindRecordByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, created.Record, found.Record)
		assert.Equal(t, "nilmamano.com", found.Site)
		assert.Equal(t, "dsa_blog", found.Source)
		assert.Equal(t, created.ContentHash, found.ContentHash)
		assert.True(t, created.ScrapedAt.Equal(found.ScrapedAt))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)

		_, err := svc.FindRecordByID(context.Background(), "missing")

		assert.Equal(t, scrapedoc.ENOTFOUND, scrapedoc.ErrorCode(err))
	})
}

func TestRecordService_FindRecords(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *sqlite.RecordService) {
		t.Helper()
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			url := fmt.Sprintf("https://interviewing.io/blog/post-%d", i)
			require.NoError(t, svc.CreateRecord(ctx, newStoredRecord("interviewing.io", "blog", url)))
		}
		for i := 0; i < 2; i++ {
			url := fmt.Sprintf("https://interviewing.io/guides/guide-%d", i)
			require.NoError(t, svc.CreateRecord(ctx, newStoredRecord("interviewing.io", "guides", url)))
		}
		require.NoError(t, svc.CreateRecord(ctx, newStoredRecord("nilmamano.com", "dsa_blog", "https://nilmamano.com/blog/heaps")))
	}

	t.Run("returns all records with empty filter", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)
		seed(t, svc)

		records, err := svc.FindRecords(context.Background(), scrapedoc.RecordFilter{})
		require.NoError(t, err)

		assert.Len(t, records, 6)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)

		site := "nowhere"
		records, err := svc.FindRecords(context.Background(), scrapedoc.RecordFilter{Site: &site})
		require.NoError(t, err)

		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("filters by site and source", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)
		seed(t, svc)

		site, source := "interviewing.io", "guides"
		records, err := svc.FindRecords(context.Background(), scrapedoc.RecordFilter{Site: &site, Source: &source})
		require.NoError(t, err)

		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, "guides", r.Source)
		}
	})

	t.Run("filters by source URL", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)
		seed(t, svc)

		url := "https://nilmamano.com/blog/heaps"
		records, err := svc.FindRecords(context.Background(), scrapedoc.RecordFilter{SourceURL: &url})
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, "nilmamano.com", records[0].Site)
	})

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)
		seed(t, svc)

		records, err := svc.FindRecords(context.Background(), scrapedoc.RecordFilter{})
		require.NoError(t, err)

		require.Len(t, records, 6)
		assert.Equal(t, "https://nilmamano.com/blog/heaps", records[0].SourceURL)
		assert.Equal(t, "https://interviewing.io/blog/post-0", records[5].SourceURL)
	})

	t.Run("respects limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewRecordService(db)
		seed(t, svc)
		ctx := context.Background()

		page, err := svc.FindRecords(ctx, scrapedoc.RecordFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, page, 2)

		tail, err := svc.FindRecords(ctx, scrapedoc.RecordFilter{Offset: 4})
		require.NoError(t, err)
		assert.Len(t, tail, 2)
	})
}
