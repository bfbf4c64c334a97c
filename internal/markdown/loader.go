package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/links"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// LoaderConfig configures how Markdown files are discovered within a space
// directory.
type LoaderConfig struct {
	// BasePath is the space directory; absolute paths are made relative to it.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns space files into documents with parsed front matter.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader over filesystem, which is rooted at the space
// directory.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        filesystem,
		basePath:  filepath.Clean(cfg.BasePath),
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// DocumentResult carries the parsed document along with the raw source.
type DocumentResult struct {
	Document *interfaces.Document
	Source   []byte
}

// DirectoryResult lists the documents of a directory walk plus the warnings
// raised while walking it.
type DirectoryResult struct {
	Documents []*DocumentResult
	Warnings  []string
}

// LoadParams provide call-specific overrides for pattern matching.
type LoadParams struct {
	Pattern   string
	Recursive *bool
}

// LoadFile reads a single Markdown document and splits its front matter.
func (l *Loader) LoadFile(ctx context.Context, name string) (*DocumentResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel, err := l.makeRelative(name)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "markdown loader read "+rel).
			WithMetadata(map[string]any{"source": rel})
	}
	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "markdown loader stat "+rel).
			WithMetadata(map[string]any{"source": rel})
	}

	doc, err := BuildDocument(rel, data, info.ModTime())
	if err != nil {
		return nil, err
	}
	return &DocumentResult{Document: doc, Source: data}, nil
}

// LoadDirectory discovers Markdown files under dir. Directories whose name
// starts with "_" hold templates and are skipped, as are hidden directories.
// Every other directory without an index.md produces a warning.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts LoadParams) (*DirectoryResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}
	root = filepath.ToSlash(filepath.Clean(root))

	result := &DirectoryResult{}
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if current != root && isSkippedDir(d.Name()) {
				return fs.SkipDir
			}
			if !l.shouldRecurse(root, current, opts.Recursive) {
				return fs.SkipDir
			}
			if !l.exists(path.Join(current, links.HomePage)) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("directory %s is missing %s", current, links.HomePage))
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !l.matchesPattern(current, opts.Pattern) {
			return nil
		}

		doc, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		result.Documents = append(result.Documents, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Document.FilePath < result.Documents[j].Document.FilePath
	})
	return result, nil
}

// Exists reports whether a space-relative file is present.
func (l *Loader) Exists(name string) bool {
	return l.exists(name)
}

// ReadFile returns the content of a space-relative file.
func (l *Loader) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(l.fs, links.NormalizePath(name))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "markdown loader read "+name)
	}
	return data, nil
}

func (l *Loader) exists(name string) bool {
	info, err := fs.Stat(l.fs, links.NormalizePath(name))
	return err == nil && !info.IsDir()
}

func isSkippedDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func (l *Loader) shouldRecurse(root, current string, override *bool) bool {
	recursive := l.recursive
	if override != nil {
		recursive = *override
	}
	if recursive {
		return true
	}
	return path.Clean(root) == path.Clean(current)
}

func (l *Loader) matchesPattern(name string, override string) bool {
	pattern := override
	if strings.TrimSpace(pattern) == "" {
		pattern = l.pattern
	}
	pattern = filepath.ToSlash(pattern)
	if strings.Contains(pattern, "**") {
		pattern = strings.ReplaceAll(pattern, "**/", "")
	}
	target := path.Base(name)
	if strings.Contains(pattern, "/") {
		target = name
	}
	match, err := path.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) makeRelative(name string) (string, error) {
	clean := filepath.Clean(name)
	if !filepath.IsAbs(clean) {
		return clean, nil
	}
	if l.basePath == "" || l.basePath == "." {
		return "", goerrors.New("markdown loader: absolute path "+name+" provided without base path", goerrors.CategoryBadInput)
	}
	rel, err := filepath.Rel(l.basePath, clean)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "markdown loader: make relative "+name)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", goerrors.New("markdown loader: "+name+" is outside the space directory", goerrors.CategoryBadInput)
	}
	return rel, nil
}
