package markdown

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeMissingTitle       = "MISSING_TITLE"
	TextCodeMissingParent      = "MISSING_PARENT"
	TextCodeMissingFileLink    = "MISSING_FILE_LINK"
	TextCodeMissingAttachment  = "MISSING_ATTACHMENT"
	TextCodeInvalidSpaceKey    = "INVALID_SPACE_KEY"
	TextCodeInvalidFrontMatter = "INVALID_FRONT_MATTER"
	TextCodeRenderFailed       = "RENDER_FAILED"
)

func missingTitleError(source string) *goerrors.Error {
	return goerrors.New("missing first heading for title in "+source, goerrors.CategoryValidation).
		WithTextCode(TextCodeMissingTitle).
		WithMetadata(map[string]any{"source": source})
}

func missingParentError(source, parent string) *goerrors.Error {
	return goerrors.New("Missing parent: "+parent, goerrors.CategoryNotFound).
		WithTextCode(TextCodeMissingParent).
		WithMetadata(map[string]any{"source": source, "parent": parent})
}

func missingFileLinkError(source string, targets []string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("missing file links in [%s]: %s", source, strings.Join(targets, ",")),
		goerrors.CategoryNotFound,
	).WithTextCode(TextCodeMissingFileLink).
		WithMetadata(map[string]any{"source": source, "links": targets})
}

func missingAttachmentError(source string, targets []string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("missing attachments in [%s]: %s", source, strings.Join(targets, ",")),
		goerrors.CategoryNotFound,
	).WithTextCode(TextCodeMissingAttachment).
		WithMetadata(map[string]any{"source": source, "attachments": targets})
}

func invalidSpaceKeyError(key string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("Invalid space directory/key '%s': can only be letters and numbers", key),
		goerrors.CategoryValidation,
	).WithTextCode(TextCodeInvalidSpaceKey).
		WithMetadata(map[string]any{"key": key})
}

// HasTextCode reports whether err, or any error it wraps or joins, carries
// the given go-errors text code.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var typed *goerrors.Error
	if errors.As(err, &typed) && typed.TextCode == code {
		return true
	}
	switch wrapped := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range wrapped.Unwrap() {
			if HasTextCode(inner, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return HasTextCode(wrapped.Unwrap(), code)
	}
	return false
}
