package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/model"
	"github.com/nao1215/linkaudit/internal/report"
)

// File permissions of the output directory and the result files.
const (
	dirPerm  fs.FileMode = 0o750
	filePerm fs.FileMode = 0o600
)

// timestampLayout formats the time part of generated names.
const timestampLayout = "20060102_150405"

// Recorder indexes saved results, for example in the history database.
type Recorder interface {
	Save(ctx context.Context, result *model.ExtractionResult, location string) (int64, error)
}

// LocalStorage saves results as pretty-printed JSON files.
// It is safe for concurrent use; name collisions are resolved by the
// exclusive create of the file system.
type LocalStorage struct {
	// dir is the output directory, created on first save.
	dir string

	// recorder is notified of every saved file. May be nil.
	recorder Recorder

	// now returns the current time.
	now func() time.Time

	logger *slog.Logger
}

// Option configures a LocalStorage.
type Option func(*LocalStorage)

// WithRecorder indexes every saved result.
func WithRecorder(r Recorder) Option {
	return func(s *LocalStorage) {
		s.recorder = r
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *LocalStorage) {
		s.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *LocalStorage) {
		s.logger = logger
	}
}

// NewLocalStorage creates a storage writing into dir.
// An empty dir means config.DefaultOutputDir.
func NewLocalStorage(dir string, opts ...Option) *LocalStorage {
	if dir == "" {
		dir = config.DefaultOutputDir
	}

	s := &LocalStorage{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dir returns the output directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes result and returns the path of the file.
// An empty filename lets the storage derive one from the result's domain.
func (s *LocalStorage) Save(ctx context.Context, result *model.ExtractionResult, filename string) (string, error) {
	if result == nil {
		return "", model.NewResultStorageError(s.dir, ErrNilResult)
	}

	data, err := report.MarshalResult(result)
	if err != nil {
		return "", model.NewResultStorageError(s.dir, fmt.Errorf("failed to encode result: %w", err))
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", model.NewResultStorageError(s.dir, fmt.Errorf("failed to create output directory: %w", err))
	}

	var path string
	if filename != "" {
		path, err = s.overwrite(filename, data)
	} else {
		path, err = s.create(result, data)
	}
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "result saved to file",
		"path", path,
		"bytes", len(data),
		"total_links", result.TotalLinks(),
	)

	if s.recorder != nil {
		if _, err := s.recorder.Save(ctx, result, path); err != nil {
			s.logger.WarnContext(ctx, "failed to record result in history", "path", path, "error", err)
		}
	}

	return path, nil
}

// overwrite writes data to a caller-supplied name, replacing any file.
func (s *LocalStorage) overwrite(filename string, data []byte) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", model.NewResultStorageError(filename, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", model.NewResultStorageError(path, err)
	}
	return path, nil
}

// create writes data to a generated name. A taken name is retried once
// with a microsecond suffix.
func (s *LocalStorage) create(result *model.ExtractionResult, data []byte) (string, error) {
	now := s.now()
	base := GenerateFilename(result, now)

	path := filepath.Join(s.dir, base)
	err := writeExclusive(path, data)
	if !errors.Is(err, fs.ErrExist) {
		if err != nil {
			return "", model.NewResultStorageError(path, err)
		}
		return path, nil
	}

	retry := fmt.Sprintf("%s_%06d.json", strings.TrimSuffix(base, ".json"), now.Nanosecond()/1000)
	s.logger.Warn("file already exists, retrying", "original", base, "new", retry)

	path = filepath.Join(s.dir, retry)
	if err := writeExclusive(path, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			err = fmt.Errorf("%w: %s", ErrNameCollision, retry)
		}
		return "", model.NewResultStorageError(path, err)
	}
	return path, nil
}

// GenerateFilename returns extraction_{domain}_{YYYYMMDD_HHMMSS}.json for
// result at t.
func GenerateFilename(result *model.ExtractionResult, t time.Time) string {
	domain := result.Domain()
	if domain == "" {
		domain = "unknown"
	}
	domain = strings.NewReplacer(":", "_", "/", "_").Replace(domain)
	return fmt.Sprintf("extraction_%s_%s.json", domain, t.Format(timestampLayout))
}

// cleanFilename appends ".json" when missing and rejects names with a
// directory part.
func cleanFilename(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	return name, nil
}

// writeExclusive creates path with data, failing with fs.ErrExist when it
// exists.
func writeExclusive(path string, data []byte) error {
	return createExclusive(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// createExclusive creates path and fills it with write. A file that could
// not be fully written is removed so its name can be used again.
func createExclusive(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) //nolint:gosec // path is built from a sanitized name
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
