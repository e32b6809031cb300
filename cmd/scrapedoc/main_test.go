package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/scrapedoc"
	main "github.com/fwojciec/scrapedoc/cmd/scrapedoc"
	"github.com/fwojciec/scrapedoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longParagraph = "A binary heap is a complete binary tree that satisfies the heap property at every node."

var testPages = map[string]string{
	"/blog": `<html><body>
<nav><a href="/">Home</a></nav>
<a href="/blog/heaps">Heaps</a>
<a href="/blog/tries">Tries</a>
<a href="/blog/heaps">Heaps again</a>
</body></html>`,
	"/blog/heaps": `<html><body><h1>Heaps</h1><span class="author">Nil Mamano</span>
<article><p>` + longParagraph + `</p><pre><code>heapq.heappush(h, x)</code></pre></article></body></html>`,
	"/blog/tries": `<html><body><h1>Tries</h1>
<article><p>A trie stores strings by sharing common prefixes between many different keys.</p></article></body></html>`,
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := testPages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCatalog(t *testing.T, baseURL string, dynamic bool) string {
	t.Helper()
	doc := fmt.Sprintf(`
politenessDelay: 0s
request:
  retries: 1
  retryDelay: 0s
sites:
  - name: test
    baseUrl: %[1]s
    sources:
      - name: blog
        url: %[1]s/blog
        dynamic: %[2]t
        contentType: blog
        selectors:
          links: 'a[href^="/blog/"]'
          title: h1
          content: article
          author: .author
`, baseURL, dynamic)
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "history.db")
	m.NewRenderer = func(scrapedoc.Config, *slog.Logger) (scrapedoc.Fetcher, error) {
		return nil, errors.New("no browser in tests")
	}
	return m
}

func readRecords(t *testing.T, path string) []scrapedoc.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []scrapedoc.Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	help := stdout.String()
	for _, cmd := range []string{"run", "convert", "sites", "history"} {
		assert.Contains(t, help, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, help, "Usage:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), nil, stdout, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestCmdRun(t *testing.T) {
	t.Parallel()

	t.Run("scrapes listing into JSON records and history", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		out := t.TempDir()
		m := newTestMain(t)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, false), "run", "--out", out},
			stdout, stderr)
		require.NoError(t, err, "stderr: %s", stderr.String())

		records := readRecords(t, filepath.Join(out, "scraped_content.json"))
		require.Len(t, records, 2)

		assert.Equal(t, "Heaps", records[0].Title)
		assert.Equal(t, srv.URL+"/blog/heaps", records[0].SourceURL)
		assert.Equal(t, "Nil Mamano", records[0].Author)
		assert.Equal(t, "blog", records[0].ContentType)
		assert.Contains(t, records[0].Content, longParagraph)
		assert.Contains(t, records[0].Content, "```\nheapq.heappush(h, x)\n```")
		assert.Equal(t, "Tries", records[1].Title)

		assert.Contains(t, stdout.String(), "blog: 2 links")
		assert.Contains(t, stdout.String(), "Saved 2 records")

		history := &bytes.Buffer{}
		err = newHistoryMain(m).Run(context.Background(), []string{"history"}, history, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, history.String(), "test/blog")
		assert.Contains(t, history.String(), srv.URL+"/blog/heaps")
		assert.Contains(t, history.String(), srv.URL+"/blog/tries")
	})

	t.Run("writes markdown tree", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		out := t.TempDir()
		m := newTestMain(t)
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, false), "run", "--out", out, "--format", "markdown", "--no-history"},
			&bytes.Buffer{}, stderr)
		require.NoError(t, err, "stderr: %s", stderr.String())

		u, err := url.Parse(srv.URL)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(out, "scraped_content", u.Host, "blog", "heaps.md"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "---\n"))
		assert.Contains(t, string(data), longParagraph)
		assert.NoFileExists(t, m.DBPath)
	})

	t.Run("prepends byline when requested", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		out := t.TempDir()
		m := newTestMain(t)

		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, false), "run", "--out", out, "--byline", "--no-history"},
			&bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)

		records := readRecords(t, filepath.Join(out, "scraped_content.json"))
		require.NotEmpty(t, records)
		assert.True(t, strings.HasPrefix(records[0].Content, "*By Nil Mamano*\n\n*Source: "+srv.URL+"/blog/heaps*"))
	})

	t.Run("renders dynamic sources with the renderer", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		out := t.TempDir()
		m := newTestMain(t)

		var mu sync.Mutex
		var rendered []string
		closed := false
		m.NewRenderer = func(cfg scrapedoc.Config, _ *slog.Logger) (scrapedoc.Fetcher, error) {
			assert.Equal(t, 1200, cfg.Render.Width)
			return &mock.Fetcher{
				FetchFn: func(ctx context.Context, rawURL string) (string, error) {
					mu.Lock()
					rendered = append(rendered, rawURL)
					mu.Unlock()
					u, err := url.Parse(rawURL)
					if err != nil {
						return "", err
					}
					return testPages[u.Path], nil
				},
				CloseFn: func() error {
					closed = true
					return nil
				},
			}, nil
		}

		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, true), "run", "--out", out, "--no-history"},
			&bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Equal(t, []string{srv.URL + "/blog", srv.URL + "/blog/heaps", srv.URL + "/blog/tries"}, rendered)
		assert.True(t, closed)
		assert.Len(t, readRecords(t, filepath.Join(out, "scraped_content.json")), 2)
	})

	t.Run("falls back to static fetching without a renderer", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		out := t.TempDir()
		m := newTestMain(t)
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, true), "run", "--out", out, "--no-history"},
			&bytes.Buffer{}, stderr)
		require.NoError(t, err)

		assert.Contains(t, stderr.String(), "Hint: Chrome or Chromium")
		assert.Len(t, readRecords(t, filepath.Join(out, "scraped_content.json")), 2)
	})

	t.Run("writes empty array when the listing fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)
		out := t.TempDir()
		m := newTestMain(t)
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, false), "run", "--out", out, "--no-history"},
			&bytes.Buffer{}, stderr)
		require.NoError(t, err)

		assert.Empty(t, readRecords(t, filepath.Join(out, "scraped_content.json")))
		assert.Contains(t, stderr.String(), "1 of 1 sources failed")
	})

	t.Run("returns ENOTFOUND for unknown site", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		err := m.Run(context.Background(),
			[]string{"run", "--site", "nope", "--out", t.TempDir(), "--no-history"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, scrapedoc.ENOTFOUND, scrapedoc.ErrorCode(err))
	})

	t.Run("returns EINVALID for unknown format", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		err := m.Run(context.Background(),
			[]string{"run", "--format", "xml", "--out", t.TempDir(), "--no-history"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, scrapedoc.EINVALID, scrapedoc.ErrorCode(err))
	})

	t.Run("reports missing catalog", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		err := m.Run(context.Background(),
			[]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "run"},
			&bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, scrapedoc.ENOTFOUND, scrapedoc.ErrorCode(err))
	})
}

func TestCmdConvert(t *testing.T) {
	t.Parallel()

	writeHTML := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "page.html")
		require.NoError(t, os.WriteFile(path, []byte(`<h1>Title</h1><p>Some <strong>bold</strong> text.</p>`), 0o644))
		return path
	}

	t.Run("prints markdown", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"convert", writeHTML(t)}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "# Title")
		assert.Contains(t, stdout.String(), "**bold**")
	})

	t.Run("adds attribution lines", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(),
			[]string{"convert", writeHTML(t), "--source-url", "https://example.com/p", "--author", "Jane"},
			stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(stdout.String(), "*By Jane*\n\n*Source: https://example.com/p*\n\n# Title"))
	})

	t.Run("fails for missing file", func(t *testing.T) {
		t.Parallel()

		err := newTestMain(t).Run(context.Background(),
			[]string{"convert", filepath.Join(t.TempDir(), "missing.html")},
			&bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})
}

func TestCmdSites(t *testing.T) {
	t.Parallel()

	t.Run("lists built-in sources", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"sites"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "interviewing.io  https://interviewing.io")
		assert.Contains(t, out, "  blog  blog_listing  static  https://interviewing.io/blog")
		assert.Contains(t, out, "  company_guides  guide_listing  dynamic")
		assert.Contains(t, out, "  interview_guides  guide_listing  dynamic")
		assert.Contains(t, out, "  dsa_blog  blog_listing  static  https://nilmamano.com/blog/category/dsa")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"sites", "--json"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		var sites []scrapedoc.Site
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &sites))
		require.Len(t, sites, 2)
		assert.Len(t, sites[0].Sources, 3)
		assert.Equal(t, "https://nilmamano.com", sites[1].Sources[0].BaseURL)
	})
}

func TestCmdHistory(t *testing.T) {
	t.Parallel()

	t.Run("reports empty history", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newTestMain(t).Run(context.Background(), []string{"history"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "No records found")
	})

	t.Run("filters by source", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t)
		m := newTestMain(t)
		err := m.Run(context.Background(),
			[]string{"--config", writeCatalog(t, srv.URL, false), "run", "--out", t.TempDir()},
			&bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)

		stdout := &bytes.Buffer{}
		err = newHistoryMain(m).Run(context.Background(), []string{"history", "--source", "other"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No records found")

		stdout.Reset()
		err = newHistoryMain(m).Run(context.Background(), []string{"history", "--source", "blog", "-n", "1"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(stdout.String(), "\n"))
	})
}

// newHistoryMain returns a fresh Main sharing m's database path.
func newHistoryMain(m *main.Main) *main.Main {
	h := main.NewMain()
	h.DBPath = m.DBPath
	return h
}
