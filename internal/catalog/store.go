// Package catalog persists the film list as a single JSON document.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m3rciful/filmbot/core/logger"
	"github.com/m3rciful/filmbot/internal/film"
)

const component = "catalog"

// ErrIndexOutOfRange is returned by Get for positions outside the catalog.
var ErrIndexOutOfRange = errors.New("catalog: index out of range")

// StorageError reports an unreadable, unparseable or unwritable document.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code identifies the error kind in logs.
func (e *StorageError) Code() string { return "storage" }

// Store reads and rewrites the catalog document at Path.
// Appends are serialised within the process; other processes writing the same file still race.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// List reads every film in document order.
func (s *Store) List(ctx context.Context) ([]film.Film, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	var films []film.Film
	if err := json.Unmarshal(data, &films); err != nil {
		return nil, &StorageError{Op: "decode", Path: s.path, Err: err}
	}
	if films == nil {
		films = []film.Film{}
	}
	logger.Debug(ctx, component, "catalog.list",
		slog.String("status", "ok"),
		slog.Int("count", len(films)),
	)
	return films, nil
}

// Get returns the film at position i.
func (s *Store) Get(ctx context.Context, i int) (film.Film, error) {
	films, err := s.List(ctx)
	if err != nil {
		return film.Film{}, err
	}
	if i < 0 || i >= len(films) {
		return film.Film{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(films))
	}
	return films[i], nil
}

// Append adds f to the end of the catalog and rewrites the whole document.
func (s *Store) Append(ctx context.Context, f film.Film) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	films, err := s.List(ctx)
	if err != nil {
		return err
	}
	if f.Actors == nil {
		f.Actors = []string{}
	}
	films = append(films, f)
	if err := s.write(films); err != nil {
		logger.Error(ctx, component, "catalog.append",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.Info(ctx, component, "catalog.append",
		slog.String("status", "ok"),
		slog.Int("film_index", len(films)-1),
		slog.Int("count", len(films)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// EnsureExists creates an empty document when none is present.
func (s *Store) EnsureExists(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &StorageError{Op: "stat", Path: s.path, Err: err}
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StorageError{Op: "mkdir", Path: s.path, Err: err}
		}
	}
	if err := s.write([]film.Film{}); err != nil {
		return err
	}
	logger.Info(ctx, component, "catalog.created",
		slog.String("status", "ok"),
		slog.String("path", s.path),
	)
	return nil
}

// write replaces the document through a temp file in the same directory.
func (s *Store) write(films []film.Film) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(films); err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}
