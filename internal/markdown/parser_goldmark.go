package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-markspace/internal/doctree"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// DefaultExtensions is the extension set used when none is configured.
var DefaultExtensions = []string{"table", "tasklist", "strikethrough", "footnote"}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"footnotes":     extension.Footnote,
}

// Parser builds document trees with goldmark. A Parser is safe for concurrent
// use.
type Parser struct {
	engine goldmark.Markdown
}

// NewParser configures goldmark from opts. Unknown extension names are
// ignored.
func NewParser(opts interfaces.RenderOptions) *Parser {
	exts := collectExtensions(opts.Extensions)
	if opts.Emoji {
		exts = append(exts, emoji.Emoji)
	}
	return &Parser{
		engine: goldmark.New(goldmark.WithExtensions(exts...)),
	}
}

// Parse converts a Markdown body, without front matter, into a tree.
func (p *Parser) Parse(body []byte) *doctree.Tree {
	root := p.engine.Parser().Parse(text.NewReader(body))
	return buildTree(root, body)
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		names = DefaultExtensions
	}
	var extenders []goldmark.Extender
	seen := map[goldmark.Extender]struct{}{}
	for _, name := range names {
		ext, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		extenders = append(extenders, ext)
	}
	return extenders
}
