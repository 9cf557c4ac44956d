package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DecodeError reports a store file that is not valid JSON, has the wrong
// shape, or holds records that fail validation.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// validator is implemented by collections that check their records on load.
type validator interface {
	Validate() error
}

// JSONStore owns one JSON file. Every access goes through mu, so a
// read-modify-write cycle via Update is never interleaved with another.
type JSONStore[T any] struct {
	mu     sync.Mutex
	path   string
	name   string
	logger *Logger
}

// OpenJSONStore returns a store for path, writing empty to it first if the
// file does not exist yet.
func OpenJSONStore[T any](path string, empty T, logger *Logger) (*JSONStore[T], error) {
	s := &JSONStore[T]{
		path:   path,
		name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		logger: logger,
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.write(empty); err != nil {
			return nil, err
		}
		logger.Info(ComponentStore, fmt.Sprintf("Created %s with an empty default", path))
	case err != nil:
		return nil, err
	}
	return s, nil
}

// Name is the file name without extension, used as a metrics label.
func (s *JSONStore[T]) Name() string { return s.name }

// Load reads and decodes the whole file.
func (s *JSONStore[T]) Load() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Save replaces the file contents with v.
func (s *JSONStore[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(v)
}

// Update loads the file, hands the value to fn and writes it back if fn
// reports a change. The store stays locked for the whole cycle.
func (s *JSONStore[T]) Update(fn func(v *T) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.read()
	if err != nil {
		return err
	}
	changed, err := fn(&v)
	if err != nil || !changed {
		return err
	}
	return s.write(v)
}

// Raw returns the file exactly as stored.
func (s *JSONStore[T]) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.ReadFile(s.path)
}

func (s *JSONStore[T]) read() (T, error) {
	var v T
	b, err := os.ReadFile(s.path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, &DecodeError{Path: s.path, Err: err}
	}
	if vv, ok := any(v).(validator); ok {
		if err := vv.Validate(); err != nil {
			return v, &DecodeError{Path: s.path, Err: err}
		}
	}
	return v, nil
}

// write goes through a temp file in the same directory and a rename, so a
// crash mid-write never leaves a truncated store behind.
func (s *JSONStore[T]) write(v T) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			StoreWriteErrors.WithLabelValues(s.name).Inc()
			s.logger.Error(ComponentStore, fmt.Sprintf("Failed to write %s: %v", s.path, err))
			return
		}
		StoreWriteDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
