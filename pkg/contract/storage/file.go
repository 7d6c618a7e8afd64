package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/clausewatch/pkg/contract"
)

// document is the on-disk form of a contract file. A file holds either a
// list under "contracts" or a single contract at the top level.
type document struct {
	Contracts []*contract.Contract `json:"contracts" yaml:"contracts"`
}

// FileStore serves contracts read from YAML or JSON documents. It is
// read-only; the files are read once when the store is created.
type FileStore struct {
	path string
	mem  *MemoryStore
}

// NewFileStore loads every contract document at path, which may be a file
// or a directory.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	contracts, err := LoadContracts(path)
	if err != nil {
		return nil, err
	}
	mem, err := NewMemoryStore(contracts)
	if err != nil {
		return nil, contract.NewStorageError("file", "load", err)
	}

	logger.Info("contracts loaded",
		"path", path,
		"count", len(contracts),
	)
	return &FileStore{path: path, mem: mem}, nil
}

// LoadContracts reads contracts from a document file or from every
// .yaml, .yml and .json file in a directory, in lexical path order.
func LoadContracts(path string) ([]*contract.Contract, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, contract.NewStorageError("file", "stat", err)
	}
	if !info.IsDir() {
		return loadDocument(path)
	}

	var out []*contract.Contract
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != path {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isDocument(p) {
			return nil
		}
		cs, err := loadDocument(p)
		if err != nil {
			return err
		}
		out = append(out, cs...)
		return nil
	})
	if err != nil {
		var storageErr *contract.StorageError
		if errors.As(err, &storageErr) {
			return nil, err
		}
		return nil, contract.NewStorageError("file", "walk", err)
	}
	return out, nil
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func loadDocument(path string) ([]*contract.Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contract.NewStorageError("file", "read", err)
	}

	cs, err := decodeDocument(data, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return nil, contract.NewStorageError("file", "decode", fmt.Errorf("%s: %w", path, err))
	}
	return cs, nil
}

func decodeDocument(data []byte, isJSON bool) ([]*contract.Contract, error) {
	var doc document
	var single contract.Contract

	if isJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if len(doc.Contracts) > 0 {
			return doc.Contracts, nil
		}
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if len(doc.Contracts) > 0 {
			return doc.Contracts, nil
		}
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, err
		}
	}

	if single.ID == "" {
		return nil, nil
	}
	return []*contract.Contract{&single}, nil
}

// Path returns the file or directory the store was loaded from.
func (s *FileStore) Path() string {
	return s.path
}

// List implements contract.Store.
func (s *FileStore) List(ctx context.Context) ([]*contract.Contract, error) {
	return s.mem.List(ctx)
}

// Recent implements contract.Store.
func (s *FileStore) Recent(ctx context.Context, limit int) ([]*contract.Contract, error) {
	return s.mem.Recent(ctx, limit)
}

// Get implements contract.Store.
func (s *FileStore) Get(ctx context.Context, id string) (*contract.Contract, error) {
	return s.mem.Get(ctx, id)
}

// Clauses implements contract.Store.
func (s *FileStore) Clauses(ctx context.Context, contractID string) ([]contract.Clause, error) {
	return s.mem.Clauses(ctx, contractID)
}

// Close implements contract.Store.
func (s *FileStore) Close() error {
	return nil
}
