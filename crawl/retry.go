package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/scrapedoc"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryPolicy bounds fetch retries. The wait before attempt n+1 is
// BaseDelay × n.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns 3 attempts with a 1s base delay (waits 1s, 2s).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 1 * time.Second}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// FetchWithRetry fetches url, retrying sequentially with linear backoff.
// It returns EINVALID without fetching when url is not absolute or the policy
// allows no attempts, and a *scrapedoc.FetchExhaustedError once every attempt
// has failed. The logger, if provided, records each failed attempt.
func FetchWithRetry(ctx context.Context, rawURL string, fetch FetchFunc, policy RetryPolicy, logger *slog.Logger) (string, error) {
	if policy.MaxAttempts < 1 {
		return "", scrapedoc.Errorf(scrapedoc.EINVALID, "max attempts must be at least 1, got %d", policy.MaxAttempts)
	}
	if !isAbsoluteURL(rawURL) {
		return "", scrapedoc.Errorf(scrapedoc.EINVALID, "invalid URL %q: must be absolute", rawURL)
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		html, err := fetch(ctx, rawURL)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if logger != nil {
			logger.Warn("fetch attempt failed",
				"url", rawURL,
				"attempt", attempt,
				"max_attempts", policy.MaxAttempts,
				"err", err,
			)
		}

		// Don't wait after the last attempt
		if attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(policy.Delay(attempt)):
		}
	}

	return "", &scrapedoc.FetchExhaustedError{
		URL:      rawURL,
		Attempts: policy.MaxAttempts,
		Err:      lastErr,
	}
}

func isAbsoluteURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
