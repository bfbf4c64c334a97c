package links

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeDuplicateTitle = "DUPLICATE_TITLE"
	TextCodeEmptyAnchor    = "EMPTY_ANCHOR"
	TextCodeOutsideTree    = "LINK_OUTSIDE_TREE"
)

// DuplicateTitleError builds the conflict raised when two documents claim the
// same title.
func DuplicateTitleError(file, title string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("Duplicate title '%s' in [%s]", title, file), goerrors.CategoryConflict).
		WithTextCode(TextCodeDuplicateTitle).
		WithMetadata(map[string]any{
			"file":  file,
			"title": title,
		})
}

func emptyAnchorError(link string) *goerrors.Error {
	return goerrors.New("cannot have empty anchors", goerrors.CategoryBadInput).
		WithTextCode(TextCodeEmptyAnchor).
		WithMetadata(map[string]any{"link": link})
}

func outsideTreeError(path string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("invalid link (goes outside of space tree): %s", path), goerrors.CategoryBadInput).
		WithTextCode(TextCodeOutsideTree).
		WithMetadata(map[string]any{"path": path})
}
