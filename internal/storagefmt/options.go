package storagefmt

import (
	"strings"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// RawHTMLMode selects how raw HTML found in a page is emitted.
type RawHTMLMode string

const (
	RawHTMLEscape RawHTMLMode = "escape"
	RawHTMLOmit   RawHTMLMode = "omit"
	RawHTMLUnsafe RawHTMLMode = "unsafe"
)

// ParseRawHTMLMode maps a configuration value to a mode. Unknown values fall
// back to RawHTMLOmit.
func ParseRawHTMLMode(value string) RawHTMLMode {
	switch RawHTMLMode(strings.ToLower(strings.TrimSpace(value))) {
	case RawHTMLEscape:
		return RawHTMLEscape
	case RawHTMLUnsafe:
		return RawHTMLUnsafe
	}
	return RawHTMLOmit
}

// Options configures a Renderer.
type Options struct {
	RawHTML RawHTMLMode
	// TagFilter neutralises blacklisted tags when RawHTML is RawHTMLUnsafe.
	TagFilter  bool
	HardBreaks bool
	// CanonicalLanguages rewrites code block languages to their canonical
	// lexer alias, so "golang" becomes "go".
	CanonicalLanguages bool
}

// DefaultOptions returns the renderer defaults.
func DefaultOptions() Options {
	return Options{
		RawHTML:   RawHTMLOmit,
		TagFilter: true,
	}
}

// OptionsFromRender converts the public render options.
func OptionsFromRender(opts interfaces.RenderOptions) Options {
	out := DefaultOptions()
	if opts.RawHTML != "" {
		out.RawHTML = ParseRawHTMLMode(opts.RawHTML)
	}
	out.TagFilter = opts.TagFilter
	out.HardBreaks = opts.HardBreaks
	out.CanonicalLanguages = opts.CanonicalLanguages
	return out
}
