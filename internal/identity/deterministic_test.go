package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	if UUID("markspace:node:a") != UUID("  markspace:node:a ") {
		t.Fatalf("expected surrounding whitespace to be ignored")
	}
	if UUID("") != uuid.Nil {
		t.Fatalf("expected nil uuid for empty key")
	}
}

func TestNodeUUIDScopesBySpace(t *testing.T) {
	if NodeUUID("DOCS", "Home") != NodeUUID("docs", "Home") {
		t.Fatalf("space keys compare case-insensitively")
	}
	if NodeUUID("DOCS", "Home") == NodeUUID("TEAM", "Home") {
		t.Fatalf("same title in different spaces must not collide")
	}
}

func TestAttachmentUUIDScopesByPage(t *testing.T) {
	page := NodeUUID("DOCS", "Home").String()
	other := NodeUUID("DOCS", "Guides").String()
	if AttachmentUUID(page, "a.png") == AttachmentUUID(other, "a.png") {
		t.Fatalf("attachments on different pages must not collide")
	}
	if AttachmentUUID(page, "a.png") == NodeUUID("DOCS", "a.png") {
		t.Fatalf("attachment and node ids must not collide")
	}
}
