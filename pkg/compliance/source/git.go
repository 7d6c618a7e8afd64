package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/clausewatch/pkg/compliance/rules"
)

// GitConfig identifies rule packs inside a local git repository.
type GitConfig struct {
	// Repository is the path to the working copy or bare repository.
	Repository string

	// Ref is any revision go-git can resolve: a branch, tag or commit hash.
	// Default: HEAD.
	Ref string

	// Path is a pack file or directory inside the repository. Empty means
	// the repository root.
	Path string
}

// GitSource reads rule packs from a committed revision of a local git
// repository. The working tree is never read, so uncommitted edits do not
// affect the loaded rules. Remotes are not fetched.
type GitSource struct {
	config GitConfig
	files  *FileConfig
	logger *slog.Logger
}

// NewGitSource creates a git-backed rule source.
func NewGitSource(config GitConfig, files *FileConfig, logger *slog.Logger) (*GitSource, error) {
	if config.Repository == "" {
		return nil, fmt.Errorf("repository path cannot be empty")
	}
	if config.Ref == "" {
		config.Ref = "HEAD"
	}
	if files == nil {
		files = DefaultFileConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitSource{config: config, files: files, logger: logger}, nil
}

// Load implements Source. Pack.Version is the abbreviated commit hash.
func (s *GitSource) Load(ctx context.Context) (*Pack, error) {
	repo, err := gogit.PlainOpenWithOptions(s.config.Repository, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &LoadError{Path: s.config.Repository, Message: "failed to open repository", Cause: err}
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(s.config.Ref))
	if err != nil {
		return nil, &LoadError{Path: s.config.Repository, Message: fmt.Sprintf("failed to resolve revision %q", s.config.Ref), Cause: err}
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, &LoadError{Path: s.config.Repository, Message: "failed to read commit", Cause: err}
	}

	files, err := s.collectFiles(commit)
	if err != nil {
		return nil, err
	}

	packs := make([]*Pack, 0, len(files))
	errList := &rules.ErrorList{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pack, err := s.loadFile(f)
		if err != nil {
			errList.Add(err)
			continue
		}
		packs = append(packs, pack)
	}
	if errList.HasErrors() {
		return nil, errList
	}

	short := commit.Hash.String()[:12]
	pack := combine(packs, "")
	pack.Version = short
	pack.Origin = fmt.Sprintf("git:%s@%s", s.config.Repository, short)

	s.logger.Info("loaded rule pack from git",
		"repository", s.config.Repository,
		"ref", s.config.Ref,
		"commit", short,
		"files", len(files),
		"rule_count", len(pack.Rules),
	)
	return pack, nil
}

// collectFiles returns the pack files at the configured path in the commit,
// sorted by name.
func (s *GitSource) collectFiles(commit *object.Commit) ([]*object.File, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, &LoadError{Path: s.config.Repository, Message: "failed to read commit tree", Cause: err}
	}

	sub := strings.Trim(path.Clean("/"+strings.ReplaceAll(s.config.Path, "\\", "/")), "/")
	if sub != "" {
		if f, err := tree.File(sub); err == nil {
			return []*object.File{f}, nil
		}
		tree, err = tree.Tree(sub)
		if err != nil {
			if errors.Is(err, object.ErrDirectoryNotFound) {
				return nil, &LoadError{Path: s.config.Repository + ":" + sub, Message: "path not found in revision " + s.config.Ref, Cause: err}
			}
			return nil, &LoadError{Path: s.config.Repository + ":" + sub, Message: "failed to read tree", Cause: err}
		}
	}

	var files []*object.File
	err = tree.Files().ForEach(func(f *object.File) error {
		if s.files.SkipHidden && hasHiddenComponent(f.Name) {
			return nil
		}
		if !s.files.HasValidExtension(f.Name) {
			return nil
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: s.config.Repository, Message: "failed to list files", Cause: err}
	}
	if len(files) == 0 {
		return nil, &LoadError{Path: s.config.Repository + ":" + sub, Message: "no rule pack files found in revision " + s.config.Ref}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *GitSource) loadFile(f *object.File) (*Pack, error) {
	name := s.config.Repository + ":" + f.Name
	if f.Size > s.files.MaxFileSize {
		return nil, &LoadError{
			Path:    name,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", f.Size, s.files.MaxFileSize),
		}
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, &LoadError{Path: name, Message: "failed to read blob", Cause: err}
	}
	if !utf8.ValidString(contents) {
		return nil, &LoadError{Path: name, Message: "file contains invalid UTF-8 encoding"}
	}

	return ParsePack([]byte(contents), name)
}

func hasHiddenComponent(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
