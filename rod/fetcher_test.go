//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/scrapedoc"
	"github.com/fwojciec/scrapedoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements scrapedoc.Fetcher.
var _ scrapedoc.Fetcher = (*rod.Fetcher)(nil)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, opts ...rod.Option) *rod.Fetcher {
	t.Helper()
	fetcher, err := rod.NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns listing links injected by script", func(t *testing.T) {
		t.Parallel()

		srv := serveHTML(t, `<!DOCTYPE html>
<html><body><ul id="guides">Loading...</ul>
<script>
document.getElementById('guides').innerHTML =
  '<li><a href="/learn/system-design">System design</a></li>' +
  '<li><a href="/learn/graphs">Graphs</a></li>';
</script>
</body></html>`)

		html, err := newFetcher(t).Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Contains(t, html, `<a href="/learn/system-design">System design</a>`)
		assert.Contains(t, html, `<a href="/learn/graphs">Graphs</a>`)
		assert.NotContains(t, html, "Loading...")
		assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	})

	t.Run("inlines open shadow roots", func(t *testing.T) {
		t.Parallel()

		srv := serveHTML(t, `<!DOCTYPE html>
<html><body><guide-body></guide-body>
<script>
customElements.define('guide-body', class extends HTMLElement {
  constructor() {
    super();
    this.attachShadow({mode: 'open'}).innerHTML = '<article data-shadow="1">Shadow article</article>';
  }
});
</script>
</body></html>`)

		html, err := newFetcher(t).Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		// The marker appears once in the script source; a second occurrence
		// comes from the serialized shadow root.
		assert.Greater(t, strings.Count(html, `data-shadow="1"`), 1)
	})

	t.Run("applies viewport", func(t *testing.T) {
		t.Parallel()

		srv := serveHTML(t, `<!DOCTYPE html>
<html><body><div id="size"></div>
<script>document.getElementById('size').textContent = 'width=' + window.innerWidth;</script>
</body></html>`)

		html, err := newFetcher(t, rod.WithViewport(640, 480)).Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Contains(t, html, "width=640")
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		srv := serveHTML(t, `<html><body>never read</body></html>`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newFetcher(t).Fetch(ctx, srv.URL)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("times out on slow pages", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`<html><body>late</body></html>`))
		}))
		t.Cleanup(srv.Close)

		_, err := newFetcher(t, rod.WithFetchTimeout(100*time.Millisecond)).Fetch(context.Background(), srv.URL)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("keeps rendering across browser recycling", func(t *testing.T) {
		t.Parallel()

		srv := serveHTML(t, `<html><body><h1>Post</h1></body></html>`)
		fetcher := newFetcher(t, rod.WithRecycleAfter(1))

		for i := 0; i < 3; i++ {
			html, err := fetcher.Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Contains(t, html, "<h1>Post</h1>")
		}
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())

	_, err = fetcher.Fetch(context.Background(), "http://example.com")

	assert.Equal(t, scrapedoc.EINVALID, scrapedoc.ErrorCode(err))
	assert.Contains(t, scrapedoc.ErrorMessage(err), "closed")
	assert.Zero(t, fetcher.LauncherPID())
}
