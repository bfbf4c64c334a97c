package storagefmt

import (
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/goliatone/go-markspace/internal/doctree"
)

const codeMacroOpen = `<ac:structured-macro ac:name="code" ac:schema-version="1" ac:macro-id="d248891e-ba87-4ba9-becf-edfb21175463">`

func (s *renderState) writeCodeBlock(n *doctree.Node) error {
	if err := s.out.cr(); err != nil {
		return err
	}
	language := n.Info
	if s.opts.CanonicalLanguages {
		language = CanonicalLanguage(language)
	}
	if err := s.write(codeMacroOpen, `<ac:parameter ac:name="language">`); err != nil {
		return err
	}
	if err := Escape(s.out, []byte(language)); err != nil {
		return err
	}
	if err := s.write("</ac:parameter><ac:plain-text-body><![CDATA["); err != nil {
		return err
	}
	if err := writeCDATA(s.out, bytes.TrimRight(n.Literal, " \t\r\n\f\v")); err != nil {
		return err
	}
	return s.write("]]></ac:plain-text-body></ac:structured-macro>")
}

// CanonicalLanguage maps a fenced code info string onto the primary alias of
// the matching lexer. Unknown languages are returned unchanged.
func CanonicalLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return language
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return language
	}
	cfg := lexer.Config()
	if cfg == nil {
		return language
	}
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}

var cdataEnd = []byte("]]>")

// writeCDATA writes literal for inclusion inside a CDATA section, splitting
// any embedded terminator across two sections.
func writeCDATA(w io.Writer, literal []byte) error {
	for {
		idx := bytes.Index(literal, cdataEnd)
		if idx < 0 {
			_, err := w.Write(literal)
			return err
		}
		if _, err := w.Write(literal[:idx+2]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "]]><![CDATA["); err != nil {
			return err
		}
		literal = literal[idx+2:]
	}
}
