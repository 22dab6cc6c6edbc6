// Package fs writes rendered extraction results to a directory tree.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/distill"
)

// URLToPath converts a source URL to a relative file path with extension ext.
// Example: https://example.com/shop/items, "json" → shop/items.json
//
// The query string and fragment are ignored. Root and directory URLs map to
// index files. An empty URL, used for documents read from stdin, maps to
// "stdin".
func URLToPath(rawURL, ext string) (string, error) {
	if rawURL == "" {
		return "stdin." + ext, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", distill.WrapError(distill.EINVALID, err, "invalid URL %q", rawURL)
	}

	path := u.Path
	if path == "" || path == "/" {
		return "index." + ext, nil
	}

	path = strings.TrimPrefix(path, "/")
	if strings.HasSuffix(path, "/") {
		return path + "index." + ext, nil
	}

	return path + "." + ext, nil
}

// Ensure ResultStore implements distill.ResultStore at compile time.
var _ distill.ResultStore = (*ResultStore)(nil)

// ResultStore implements distill.ResultStore with atomic update semantics.
// Results are saved to a temporary directory, then moved into place on Commit.
type ResultStore struct {
	baseDir string
	name    string
	ext     string
}

// NewResultStore creates a ResultStore that publishes to dir.
// Files are staged in dir + ".tmp" and carry extension ext.
func NewResultStore(dir, ext string) *ResultStore {
	dir = filepath.Clean(dir)
	return &ResultStore{
		baseDir: filepath.Dir(dir),
		name:    filepath.Base(dir),
		ext:     ext,
	}
}

func (s *ResultStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ResultStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes rendered under the path derived from run's source URL.
func (s *ResultStore) Save(ctx context.Context, run *distill.Run, rendered string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run == nil {
		return distill.Errorf(distill.EINVALID, "run required")
	}

	relPath, err := URLToPath(run.SourceURL, s.ext)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	return os.WriteFile(fullPath, []byte(rendered), 0644)
}

// Commit replaces the output directory with the staged one.
func (s *ResultStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort removes the staging directory.
func (s *ResultStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
