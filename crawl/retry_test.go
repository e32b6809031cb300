package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/scrapedoc"
	"github.com/fwojciec/scrapedoc/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) crawl.RetryPolicy {
	return crawl.RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestRetryPolicy_Delay(t *testing.T) {
	t.Parallel()

	p := crawl.RetryPolicy{MaxAttempts: 4, BaseDelay: 100 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 300*time.Millisecond, p.Delay(3))
}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns first successful result", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(ctx context.Context, url string) (string, error) {
			calls++
			return "<html></html>", nil
		}

		html, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, fastPolicy(3), nil)

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(ctx context.Context, url string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("HTTP 503")
			}
			return "ok", nil
		}

		html, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, fastPolicy(3), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns exhausted error after max attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		last := errors.New("connection reset")
		fetch := func(ctx context.Context, url string) (string, error) {
			calls++
			return "", last
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com/a", fetch, fastPolicy(3), nil)

		require.Error(t, err)
		assert.Equal(t, 3, calls)

		var exhausted *scrapedoc.FetchExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, "https://example.com/a", exhausted.URL)
		assert.Equal(t, 3, exhausted.Attempts)
		assert.ErrorIs(t, err, last)
		assert.Equal(t, scrapedoc.EUNAVAILABLE, scrapedoc.ErrorCode(err))
	})

	t.Run("single attempt does not wait", func(t *testing.T) {
		t.Parallel()

		policy := crawl.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Hour}
		fetch := func(ctx context.Context, url string) (string, error) {
			return "", errors.New("fail")
		}

		start := time.Now()
		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, policy, nil)

		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("rejects relative url without fetching", func(t *testing.T) {
		t.Parallel()

		fetch := func(ctx context.Context, url string) (string, error) {
			t.Fatal("fetch should not be called")
			return "", nil
		}

		_, err := crawl.FetchWithRetry(context.Background(), "/blog/post", fetch, fastPolicy(3), nil)

		require.Error(t, err)
		assert.Equal(t, scrapedoc.EINVALID, scrapedoc.ErrorCode(err))
	})

	t.Run("rejects zero attempts", func(t *testing.T) {
		t.Parallel()

		fetch := func(ctx context.Context, url string) (string, error) {
			t.Fatal("fetch should not be called")
			return "", nil
		}

		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", fetch, fastPolicy(0), nil)

		require.Error(t, err)
		assert.Equal(t, scrapedoc.EINVALID, scrapedoc.ErrorCode(err))
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		policy := crawl.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}
		fetch := func(ctx context.Context, url string) (string, error) {
			cancel()
			return "", errors.New("fail")
		}

		_, err := crawl.FetchWithRetry(ctx, "https://example.com", fetch, policy, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
