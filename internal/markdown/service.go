package markdown

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/links"
	"github.com/goliatone/go-markspace/internal/logging"
	"github.com/goliatone/go-markspace/internal/storagefmt"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// Config controls how a space directory is discovered, parsed and rendered.
type Config struct {
	// BasePath is the space directory. Its base name is the space key unless
	// Key is set.
	BasePath  string
	Key       string
	Pattern   string
	Recursive bool
	Render    interfaces.RenderOptions
}

// Service loads a space directory into pages and renders them.
type Service struct {
	cfg     Config
	key     string
	parser  *Parser
	loader  *Loader
	logger  interfaces.Logger
	linkLog interfaces.Logger
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithServiceLogger attaches the logger used for discovery warnings and
// renderer diagnostics.
func WithServiceLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLinksLogger attaches the logger used for link warnings raised while
// parsing pages. It defaults to the service logger.
func WithLinksLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.linkLog = logger
		}
	}
}

// NewService constructs a service over the space directory in cfg.BasePath.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	return NewServiceFS(filesystem, cfg, opts...)
}

// NewServiceFS is NewService over an already opened filesystem rooted at the
// space directory.
func NewServiceFS(filesystem fs.FS, cfg Config, opts ...ServiceOption) (*Service, error) {
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = SpaceKeyFromDir(cfg.BasePath)
	}
	if err := ValidateSpaceKey(key); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:    cfg,
		key:    key,
		parser: NewParser(cfg.Render),
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  cfg.BasePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.linkLog == nil {
		s.linkLog = s.logger
	}
	s.logger = logging.WithSpace(s.logger, key)
	s.linkLog = logging.WithSpace(s.linkLog, key)
	return s, nil
}

// Key is the space key.
func (s *Service) Key() string {
	return s.key
}

// LoadSpace parses every page of the space. Parse failures, duplicate titles,
// missing link targets and missing attachments are collected across all pages
// and returned together.
func (s *Service) LoadSpace(ctx context.Context) (*Space, error) {
	result, err := s.loader.LoadDirectory(ctx, ".", LoadParams{})
	if err != nil {
		return nil, err
	}

	space := &Space{Key: s.key, Dir: s.cfg.BasePath, Warnings: result.Warnings}
	for _, warning := range result.Warnings {
		s.logger.Warn(warning)
	}

	var errs []error
	titles := map[string]string{}
	for _, loaded := range result.Documents {
		page, err := NewPage(loaded.Document, s.parser)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, warning := range page.Warnings {
			s.linkLog.Warn(warning)
		}
		space.Warnings = append(space.Warnings, page.Warnings...)

		if _, dup := titles[page.Title]; dup {
			errs = append(errs, links.DuplicateTitleError(page.Source, page.Title))
			continue
		}
		titles[page.Title] = page.Source

		if refErrs := checkReferences(page, s.loader.Exists); len(refErrs) > 0 {
			errs = append(errs, refErrs...)
			continue
		}
		space.Pages = append(space.Pages, page)
	}

	if err := spaceError(s.key, errs); err != nil {
		return nil, err
	}
	s.logger.Debug("space loaded", "pages", len(space.Pages), "warnings", len(space.Warnings))
	return space, nil
}

// LoadPage parses a single page of the space.
func (s *Service) LoadPage(ctx context.Context, path string) (*Page, error) {
	loaded, err := s.loader.LoadFile(ctx, s.normalisePath(path))
	if err != nil {
		return nil, err
	}
	return NewPage(loaded.Document, s.parser)
}

// ReadAttachment returns the content of an attachment collected from a page.
func (s *Service) ReadAttachment(attachment interfaces.Attachment) ([]byte, error) {
	return s.loader.ReadFile(attachment.Path)
}

// RendererOptions are the storagefmt options derived from the configuration.
func (s *Service) RendererOptions() []storagefmt.Option {
	return []storagefmt.Option{
		storagefmt.WithOptions(storagefmt.OptionsFromRender(s.cfg.Render)),
		storagefmt.WithLogger(s.logger),
	}
}

// Preview renders one page of the space. The whole space is loaded so links
// and the parent resolve exactly as they would during a sync.
func (s *Service) Preview(ctx context.Context, path string) (*RenderedPage, error) {
	space, err := s.LoadSpace(ctx)
	if err != nil {
		return nil, err
	}
	page, ok := space.Page(s.normalisePath(path))
	if !ok {
		return nil, goerrors.New("page not found in space: "+path, goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"source": path, "space_key": s.key})
	}
	registry, err := space.Registry("")
	if err != nil {
		return nil, err
	}
	return page.Render(registry, s.RendererOptions()...)
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		base, err := filepath.Abs(s.cfg.BasePath)
		if err == nil {
			if rel, err := filepath.Rel(base, clean); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(clean)
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "space directory does not exist: "+basePath)
	}
	if !info.IsDir() {
		return nil, goerrors.New("space path is not a directory: "+basePath, goerrors.CategoryBadInput)
	}
	return os.DirFS(basePath), nil
}
