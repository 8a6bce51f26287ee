package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/filebox/internal/model"
)

// FileStore is a flat directory of uploaded files. The directory listing is the
// only index; nothing is cached between calls.
type FileStore struct {
	root   *os.Root
	dir    string
	logger *slog.Logger
}

// OpenFileStore opens dir as the upload directory, creating it if needed.
// All access is confined to dir through an os.Root. A nil logger falls back to
// slog.Default.
func OpenFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open upload dir: %w", err)
	}
	return &FileStore{root: root, dir: dir, logger: logger}, nil
}

// Dir returns the directory the store was opened on.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Close() error {
	return s.root.Close()
}

// Ping checks that the upload directory is still reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := s.root.Stat(".")
	if err != nil {
		return fmt.Errorf("stat upload dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload dir %s is not a directory", s.dir)
	}
	return nil
}

// List scans the directory and returns its regular files in the order the
// filesystem reports them.
func (s *FileStore) List(ctx context.Context) ([]model.StoredFile, error) {
	d, err := s.root.Open(".")
	if err != nil {
		return nil, fmt.Errorf("open upload dir: %w", err)
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	files := make([]model.StoredFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, model.StoredFile{
			Name:     e.Name(),
			Category: model.CategoryOf(e.Name()),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	return files, nil
}

// Save sanitizes filename and writes content under that name, replacing any
// existing file. It returns the name actually used. Callers are responsible for
// running the admission check first.
func (s *FileStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", ErrInvalidName
	}

	f, err := s.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		if rmErr := s.root.Remove(name); rmErr != nil {
			s.logger.Warn("store: failed to remove partial upload", "name", name, "err", rmErr)
		}
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	s.logger.Debug("store: saved file", "name", name)
	return name, nil
}

// Delete removes the named file. It returns ErrNotFound if there is no such
// regular file.
func (s *FileStore) Delete(ctx context.Context, filename string) error {
	if !validName(filename) {
		return ErrNotFound
	}
	info, err := s.root.Lstat(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("stat %s: %w", filename, err)
	}
	if info.IsDir() {
		return ErrNotFound
	}

	if err := s.root.Remove(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	s.logger.Debug("store: deleted file", "name", filename)
	return nil
}

// Open returns the named file for streaming along with its info. The caller
// must close the file.
func (s *FileStore) Open(ctx context.Context, filename string) (*os.File, fs.FileInfo, error) {
	if !validName(filename) {
		return nil, nil, ErrNotFound
	}
	f, err := s.root.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", filename, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", filename, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}
