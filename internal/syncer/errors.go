package syncer

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/markdown"
)

const (
	TextCodePageFolderConflict = "PAGE_FOLDER_CONFLICT"
	TextCodeSyncFailed         = "SYNC_FAILED"
	TextCodeRemoteFailed       = "REMOTE_FAILED"
	TextCodeMissingCover       = "MISSING_COVER"
)

func pageFolderConflictError(source, title string, declaredFolder bool) *goerrors.Error {
	msg := fmt.Sprintf("'%s' exists remotely as a page but %s declares it a folder", title, source)
	if !declaredFolder {
		msg = fmt.Sprintf("'%s' exists remotely as a folder but %s is a page", title, source)
	}
	return goerrors.New(msg, goerrors.CategoryConflict).
		WithTextCode(TextCodePageFolderConflict).
		WithMetadata(map[string]any{"source": source, "title": title})
}

func remoteError(err error, operation, title string) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("%s '%s'", operation, title)).
		WithTextCode(TextCodeRemoteFailed).
		WithMetadata(map[string]any{"operation": operation, "title": title})
}

func missingParentNode(source, parentPath string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("cannot create %s: parent %s is not published", source, parentPath), goerrors.CategoryNotFound).
		WithTextCode(markdown.TextCodeMissingParent).
		WithMetadata(map[string]any{"source": source, "parent": parentPath})
}

func missingCoverError(source, cover string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("cover %s of %s was not uploaded", cover, source), goerrors.CategoryNotFound).
		WithTextCode(TextCodeMissingCover).
		WithMetadata(map[string]any{"source": source, "cover": cover})
}
