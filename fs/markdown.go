package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/scrapedoc"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a record URL to a relative file path rooted at its host.
// Example: https://example.com/blog/heaps → example.com/blog/heaps.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", scrapedoc.Errorf(scrapedoc.EINVALID, "URL %q has no host", rawURL)
	}

	path := strings.TrimPrefix(u.Path, "/")

	switch {
	case path == "":
		path = "index.md"
	case strings.HasSuffix(path, "/"):
		path += "index.md"
	default:
		path += ".md"
	}

	return filepath.Join(u.Host, filepath.FromSlash(path)), nil
}

type frontmatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author,omitempty"`
	Date        string `yaml:"date,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`
}

// FormatRecord formats a record as Markdown with YAML frontmatter.
func FormatRecord(record *scrapedoc.Record) (string, error) {
	meta, err := yaml.Marshal(frontmatter{
		Source:      record.SourceURL,
		Title:       record.Title,
		Author:      record.Author,
		Date:        record.Date,
		ContentType: record.ContentType,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(record.Content)
	b.WriteString("\n")
	return b.String(), nil
}

// Ensure MarkdownStore implements scrapedoc.RecordStore at compile time.
var _ scrapedoc.RecordStore = (*MarkdownStore)(nil)

// MarkdownStore writes one Markdown file per record with atomic update
// semantics. Files are saved to a temporary directory, then moved on Commit.
type MarkdownStore struct {
	baseDir string
	name    string
}

// NewMarkdownStore creates a new MarkdownStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewMarkdownStore(baseDir, name string) *MarkdownStore {
	return &MarkdownStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *MarkdownStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *MarkdownStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes a validated record into the temporary directory.
func (s *MarkdownStore) Save(ctx context.Context, record *scrapedoc.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	relPath, err := URLToPath(record.SourceURL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content, err := FormatRecord(record)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit replaces the output directory with the temporary one.
func (s *MarkdownStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort removes the temporary directory.
func (s *MarkdownStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
