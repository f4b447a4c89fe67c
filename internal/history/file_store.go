package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"sync"

	"github.com/tinchodeluca/scann-url/internal/domain"
	"github.com/tinchodeluca/scann-url/internal/fsutil"
	"github.com/tinchodeluca/scann-url/internal/logger"
)

// FileStore keeps every product's history in one JSON document of the form
// {"history": {"<name>": [{"date", "datetime", "price"}]}}.
//
// A missing or undecodable file reads as empty; the next update overwrites it.
type FileStore struct {
	path   string
	logger logger.Logger

	// mu serializes read-modify-write cycles on the shared document.
	mu sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Update implements Store.
func (s *FileStore) Update(_ context.Context, name string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	doc.History[name] = fn(doc.History[name])

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err = fsutil.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, name string) (domain.ProductHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.History[name], nil
}

// All implements Store.
func (s *FileStore) All(_ context.Context) (map[string]domain.ProductHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return maps.Clone(doc.History), nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

// load reads the document. Only I/O errors other than a missing file are
// returned; corrupt content is logged and treated as empty.
func (s *FileStore) load() (domain.HistoryDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewHistoryDocument(), nil
	}
	if err != nil {
		return domain.HistoryDocument{}, fmt.Errorf("read history %s: %w", s.path, err)
	}

	var doc domain.HistoryDocument
	if unmarshalErr := json.Unmarshal(data, &doc); unmarshalErr != nil {
		s.logger.Warn("History file is corrupt, starting from empty",
			logger.String("path", s.path),
			logger.Error(unmarshalErr),
		)
		return domain.NewHistoryDocument(), nil
	}
	if doc.History == nil {
		doc.History = make(map[string]domain.ProductHistory)
	}
	return doc, nil
}
