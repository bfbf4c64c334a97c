package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by type so pages and attachments never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// SpaceUUID identifies a space by its key.
func SpaceUUID(spaceKey string) uuid.UUID {
	return UUID("markspace:space:" + strings.ToUpper(strings.TrimSpace(spaceKey)))
}

// NodeUUID identifies a page or folder by its title, which is unique within a
// space.
func NodeUUID(spaceKey, title string) uuid.UUID {
	return UUID("markspace:node:" + SpaceUUID(spaceKey).String() + ":" + strings.TrimSpace(title))
}

// AttachmentUUID identifies an attachment by the page it hangs off and its
// flat name.
func AttachmentUUID(pageID, name string) uuid.UUID {
	return UUID("markspace:attachment:" + strings.TrimSpace(pageID) + ":" + strings.TrimSpace(name))
}
