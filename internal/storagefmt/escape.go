package storagefmt

import (
	"bytes"
	"io"
	"strings"
)

var escapeTable = [256]string{
	'"': "&quot;",
	'&': "&amp;",
	'<': "&lt;",
	'>': "&gt;",
}

// Escape writes buffer with the four markup-significant characters replaced by
// their named entities. Unescaped runs are copied in a single write.
func Escape(w io.Writer, buffer []byte) error {
	offset := 0
	for i, b := range buffer {
		repl := escapeTable[b]
		if repl == "" {
			continue
		}
		if i > offset {
			if _, err := w.Write(buffer[offset:i]); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, repl); err != nil {
			return err
		}
		offset = i + 1
	}
	if offset < len(buffer) {
		_, err := w.Write(buffer[offset:])
		return err
	}
	return nil
}

// EscapeString is a convenience wrapper around Escape for in-memory strings.
func EscapeString(value string) string {
	var buf bytes.Buffer
	_ = Escape(&buf, []byte(value))
	return buf.String()
}

var hrefSafe = func() [256]bool {
	var table [256]bool
	for _, c := range []byte("-_.+!*(),%#@?=;:/,+$~") {
		table[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		table[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}
	return table
}()

const upperHex = "0123456789ABCDEF"

// EscapeHref writes buffer for use inside a URL attribute. Bytes outside the
// safe set are percent-encoded, except the ampersand and the single quote,
// which become entities.
func EscapeHref(w io.Writer, buffer []byte) error {
	offset := 0
	for i, b := range buffer {
		if hrefSafe[b] {
			continue
		}
		if i > offset {
			if _, err := w.Write(buffer[offset:i]); err != nil {
				return err
			}
		}
		var err error
		switch b {
		case '&':
			_, err = io.WriteString(w, "&amp;")
		case '\'':
			_, err = io.WriteString(w, "&#x27;")
		default:
			_, err = w.Write([]byte{'%', upperHex[b>>4], upperHex[b&0x0f]})
		}
		if err != nil {
			return err
		}
		offset = i + 1
	}
	if offset < len(buffer) {
		_, err := w.Write(buffer[offset:])
		return err
	}
	return nil
}

var tagFilterBlacklist = []string{
	"title",
	"textarea",
	"style",
	"xmp",
	"iframe",
	"noembed",
	"noframes",
	"script",
	"plaintext",
}

func isTagSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// TagFilter reports whether literal opens or closes one of the blacklisted raw
// HTML tags.
func TagFilter(literal []byte) bool {
	if len(literal) < 3 || literal[0] != '<' {
		return false
	}
	i := 1
	if literal[i] == '/' {
		i++
	}
	rest := literal[i:]
	for _, name := range tagFilterBlacklist {
		if len(rest) < len(name) {
			continue
		}
		if !strings.EqualFold(string(rest[:len(name)]), name) {
			continue
		}
		tail := rest[len(name):]
		if len(tail) == 0 {
			return false
		}
		if isTagSpace(tail[0]) || tail[0] == '>' {
			return true
		}
		return len(tail) >= 2 && tail[0] == '/' && tail[1] == '>'
	}
	return false
}

// FilterTags writes literal, neutralising the opening bracket of every
// blacklisted tag it contains.
func FilterTags(w io.Writer, literal []byte) error {
	offset := 0
	for i := 0; i < len(literal); i++ {
		if literal[i] != '<' || !TagFilter(literal[i:]) {
			continue
		}
		if i > offset {
			if _, err := w.Write(literal[offset:i]); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "&lt;"); err != nil {
			return err
		}
		offset = i + 1
	}
	if offset < len(literal) {
		_, err := w.Write(literal[offset:])
		return err
	}
	return nil
}
