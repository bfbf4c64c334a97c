package interfaces

import "time"

// FrontMatter models the YAML header accepted at the top of a space page.
type FrontMatter struct {
	Title  string   `yaml:"title" json:"title"`
	Labels []string `yaml:"labels" json:"labels"`
	Emoji  string   `yaml:"emoji" json:"emoji"`
	Folder bool     `yaml:"folder" json:"folder"`
	Status string   `yaml:"status" json:"status"`
	// Cover is an http(s) URL or a path, relative to the page, of a local
	// image used as the page cover picture.
	Cover string `yaml:"cover" json:"cover"`
	// Sort orders the page's children. SortIncrementing is the only value.
	Sort   string         `yaml:"sort" json:"sort"`
	Custom map[string]any `yaml:",inline" json:"custom"`
	Raw    map[string]any `yaml:"-" json:"raw"`
}

// SortIncrementing orders children by title.
const SortIncrementing = "inc"

// PageStatus is the editorial state advertised by a page's front matter.
type PageStatus string

const (
	PageStatusNotSet         PageStatus = ""
	PageStatusRoughDraft     PageStatus = "draft"
	PageStatusInProgress     PageStatus = "in-progress"
	PageStatusReadyForReview PageStatus = "ready-for-review"
	PageStatusVerified       PageStatus = "verified"
)

// Document is a Markdown file discovered inside a space directory. FilePath is
// relative to the space root and always uses forward slashes.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	LastModified time.Time
	// Checksum is the SHA-256 digest of the raw file content.
	Checksum []byte
}

// RenderOptions selects the storage-format rendering behaviour.
type RenderOptions struct {
	// RawHTML is one of "escape", "omit" or "unsafe".
	RawHTML            string
	TagFilter          bool
	HardBreaks         bool
	CanonicalLanguages bool
	Emoji              bool
	Extensions         []string
}
