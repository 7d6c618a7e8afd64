package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"mercator-hq/clausewatch/pkg/compliance/rules"
)

// DefaultMaxFileSize is the largest rule pack file accepted (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// FileConfig controls how rule pack files are read.
type FileConfig struct {
	// MaxFileSize is the maximum size of one rule pack file in bytes.
	MaxFileSize int64

	// Extensions lists accepted file extensions.
	Extensions []string

	// SkipHidden skips files and directories starting with ".".
	SkipHidden bool
}

// DefaultFileConfig returns the default file configuration.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		MaxFileSize: DefaultMaxFileSize,
		Extensions:  []string{".yaml", ".yml"},
		SkipHidden:  true,
	}
}

// HasValidExtension reports whether path has an accepted extension.
func (c *FileConfig) HasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range c.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// FileSource loads rule packs from YAML files on disk.
type FileSource struct {
	path   string
	config *FileConfig
	logger *slog.Logger
}

// NewFileSource creates a new file-based rule source.
// The path can be either a single pack file or a directory of packs.
func NewFileSource(path string, config *FileConfig, logger *slog.Logger) *FileSource {
	if config == nil {
		config = DefaultFileConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		config: config,
		logger: logger,
	}
}

// Path returns the configured file or directory.
func (s *FileSource) Path() string {
	return s.path
}

// Load implements Source. For a directory, packs are read in lexical path
// order and their rules concatenated. Any failing file fails the whole load.
func (s *FileSource) Load(ctx context.Context) (*Pack, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Path: s.path, Message: "path not found", Cause: err}
		}
		return nil, &LoadError{Path: s.path, Message: "failed to access path", Cause: err}
	}

	if !info.IsDir() {
		pack, err := s.loadFile(s.path)
		if err != nil {
			return nil, err
		}
		s.logLoaded(pack, 1)
		return pack, nil
	}

	files, err := s.collectFiles(s.path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &LoadError{Path: s.path, Message: "no rule pack files found in directory"}
	}

	packs := make([]*Pack, 0, len(files))
	errList := &rules.ErrorList{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pack, err := s.loadFile(file)
		if err != nil {
			errList.Add(err)
			continue
		}
		packs = append(packs, pack)
	}
	if errList.HasErrors() {
		return nil, errList
	}

	pack := combine(packs, s.path)
	s.logLoaded(pack, len(files))
	return pack, nil
}

func (s *FileSource) logLoaded(pack *Pack, files int) {
	s.logger.Info("loaded rule pack",
		"path", s.path,
		"name", pack.Name,
		"files", files,
		"rule_count", len(pack.Rules),
	)
}

// loadFile reads and decodes a single pack file.
func (s *FileSource) loadFile(path string) (*Pack, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &LoadError{Path: path, Message: "permission denied", Cause: err}
		}
		return nil, &LoadError{Path: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{Path: path, Message: "not a regular file"}
	}
	if info.Size() > s.config.MaxFileSize {
		return nil, &LoadError{
			Path:    path,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), s.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{Path: path, Message: "file contains invalid UTF-8 encoding"}
	}

	pack, err := ParsePack(data, path)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded rule pack file",
		"path", path,
		"name", pack.Name,
		"rule_count", len(pack.Rules),
	)
	return pack, nil
}

// collectFiles returns pack files under dir in lexical order.
func (s *FileSource) collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if s.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.config.HasValidExtension(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "failed to walk directory", Cause: err}
	}
	return files, nil
}
