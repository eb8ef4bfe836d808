package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the receipt blob store. Paths returned by Save are opaque
// references relative to the store root; callers persist them on the
// owning record.
type Store interface {
	Save(r io.Reader, suggestedName string, now time.Time) (string, error)
	Open(ref string) (io.ReadCloser, error)
	Delete(ref string) error
	Exists(ref string) bool
}

// DiskStore keeps blobs under a root directory, sharded by year/month the
// way the receipt uploads were always laid out (payable_receipts/YYYY/MM).
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(r io.Reader, suggestedName string, now time.Time) (string, error) {
	dir := filepath.Join("payable_receipts", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	name := sanitizeName(suggestedName)
	ref := filepath.ToSlash(filepath.Join(dir, uuid.NewString()[:8]+"-"+name))

	f, err := os.Create(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	return ref, nil
}

func (s *DiskStore) Open(ref string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil {
		return nil, fmt.Errorf("open receipt: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete receipt: %w", err)
	}
	return nil
}

func (s *DiskStore) Exists(ref string) bool {
	if ref == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(ref)))
	return err == nil
}

// sanitizeName strips path separators and oddities from an uploaded file
// name, keeping the extension intact.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "arquivo"
	}
	return name
}
