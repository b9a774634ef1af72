package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Storer provides read access to a set of loaded definitions.
type Storer[T ValidatingSpec] interface {
	Get(Identifier) T
	Ids() []Identifier
}

// decoders turn a file's bytes into JSON. Files with any other extension are
// not assets.
var decoders = map[string]func([]byte) ([]byte, error){
	".json": func(b []byte) ([]byte, error) { return b, nil },
	".yaml": yamlToJSON,
	".yml":  yamlToJSON,
}

// FileStore holds definitions loaded from a content directory, or built in
// memory for tests and tools.
type FileStore[T ValidatingSpec] struct {
	path    string
	records map[Identifier]T

	mu sync.RWMutex
}

// NewFileStore loads every asset below path. Subdirectories are walked and an
// id may only be defined once across all of them.
func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemoryStore builds a store from already constructed definitions. Every
// definition is validated the same way a loaded asset would be.
func NewMemoryStore[T ValidatingSpec](records map[Identifier]T) (*FileStore[T], error) {
	s := &FileStore[T]{records: make(map[Identifier]T, len(records))}
	for id, rec := range records {
		asset := &Asset[T]{Version: 1, Identifier: id, Spec: rec}
		if err := asset.Validate(); err != nil {
			return nil, fmt.Errorf("validating %s: %w", id, err)
		}
		s.records[id] = rec
	}
	return s, nil
}

func (s *FileStore[T]) load() error {
	records := map[Identifier]T{}
	sources := map[Identifier]string{}

	err := filepath.WalkDir(s.path, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		decode, ok := decoders[filepath.Ext(path)]
		if d.IsDir() || !ok {
			return nil
		}

		name, _ := filepath.Rel(s.path, path)
		asset, err := readAsset[T](path, decode)
		if err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("validating %s: %w", name, err)
		}
		if prev, dup := sources[asset.Id()]; dup {
			return fmt.Errorf("duplicate id %s in %s and %s", asset.Id(), prev, name)
		}

		records[asset.Id()] = asset.Spec
		sources[asset.Id()] = name
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	slog.Debug("assets loaded", "path", s.path, "count", len(records))
	return nil
}

func readAsset[T ValidatingSpec](path string, decode func([]byte) ([]byte, error)) (*Asset[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	data, err = decode(data)
	if err != nil {
		return nil, err
	}

	asset := &Asset[T]{}
	if err := json.Unmarshal(data, asset); err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}
	return asset, nil
}

// yamlToJSON lets definitions carry only json tags whatever format they were
// written in.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting yaml: %w", err)
	}
	return out, nil
}

func (s *FileStore[T]) Get(id Identifier) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

// Ids returns every loaded identifier in sorted order.
func (s *FileStore[T]) Ids() []Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]Identifier, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
