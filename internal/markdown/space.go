package markdown

import (
	"fmt"
	"path/filepath"
	"regexp"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/links"
)

// TextCodeSpaceInvalid marks the aggregate error returned when any page of a
// space fails to load.
const TextCodeSpaceInvalid = "SPACE_INVALID"

var spaceKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateSpaceKey checks that key only contains letters and digits.
func ValidateSpaceKey(key string) error {
	if !spaceKeyPattern.MatchString(key) {
		return invalidSpaceKeyError(key)
	}
	return nil
}

// SpaceKeyFromDir derives the space key from the name of the space directory.
func SpaceKeyFromDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return filepath.Base(filepath.Clean(abs))
}

// Space is every page parsed from one space directory.
type Space struct {
	Key      string
	Dir      string
	Pages    []*Page
	Warnings []string
}

// Page returns the page parsed from source.
func (s *Space) Page(source string) (*Page, bool) {
	source = links.NormalizePath(source)
	for _, page := range s.Pages {
		if page.Source == source {
			return page, true
		}
	}
	return nil, false
}

// Registry registers every page of the space, folders included. A duplicate
// title fails the whole registry.
func (s *Space) Registry(homepageID string) (*links.Registry, error) {
	registry := links.NewRegistry(homepageID)
	for _, page := range s.Pages {
		var err error
		if page.IsFolder() {
			err = registry.RegisterFolder(page.Source, page.Title)
		} else {
			err = registry.Register(page.Source, page.Title)
		}
		if err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// checkReferences reports the local links and attachments of page whose
// target file does not exist.
func checkReferences(page *Page, exists func(string) bool) []error {
	var errs []error

	var missingLinks []string
	for _, link := range page.LocalLinks {
		if !exists(link.Target) {
			missingLinks = append(missingLinks, link.Target)
		}
	}
	if len(missingLinks) > 0 {
		errs = append(errs, missingFileLinkError(page.Source, missingLinks))
	}

	var missingAttachments []string
	for _, attachment := range page.Attachments {
		if !exists(attachment.Path) {
			missingAttachments = append(missingAttachments, attachment.Path)
		}
	}
	if len(missingAttachments) > 0 {
		errs = append(errs, missingAttachmentError(page.Source, missingAttachments))
	}
	return errs
}

// spaceError folds the per-page failures into one error. The individual
// errors stay reachable through HasTextCode.
func spaceError(key string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	aggregate := goerrors.New(fmt.Sprintf("%d error(s) parsing space %s", len(errs), key), goerrors.CategoryValidation).
		WithTextCode(TextCodeSpaceInvalid).
		WithMetadata(map[string]any{"space_key": key, "error_count": len(errs)})
	aggregate.Source = goerrors.Join(errs...)
	return aggregate
}
