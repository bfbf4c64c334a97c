package storagefmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestEscape(t *testing.T) {
	got := EscapeString(`a "quoted" <tag> & more`)
	want := "a &quot;quoted&quot; &lt;tag&gt; &amp; more"
	if got != want {
		t.Fatalf("Escape: want %q got %q", want, got)
	}
	if EscapeString("plain text") != "plain text" {
		t.Fatalf("expected plain text to pass through")
	}
}

func TestEscapeHref(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a?b=c&d='e'": "https://example.com/a?b=c&amp;d=&#x27;e&#x27;",
		"abcXYZ019":                       "abcXYZ019",
		"a b":                             "a%20b",
		"q=a%20b":                         "q=a%20b",
		"é":                               "%C3%A9",
		"<x>":                             "%3Cx%3E",
	}
	for in, want := range cases {
		var buf bytes.Buffer
		if err := EscapeHref(&buf, []byte(in)); err != nil {
			t.Fatalf("EscapeHref(%q): %v", in, err)
		}
		if got := buf.String(); got != want {
			t.Fatalf("EscapeHref(%q): want %q got %q", in, want, got)
		}
	}
}

func TestTagFilter(t *testing.T) {
	cases := map[string]bool{
		"<script>":         true,
		"</SCRIPT>":        true,
		"<iframe src=x>":   true,
		"<style/>":         true,
		"<textarea\n":      true,
		"<scripts>":        false,
		"<div>":            false,
		"<t":               false,
		"script>":          false,
		"<plaintext attr>": true,
		"<noframes>":       true,
	}
	for in, want := range cases {
		if got := TagFilter([]byte(in)); got != want {
			t.Fatalf("TagFilter(%q): want %v got %v", in, want, got)
		}
	}
}

func TestFilterTags(t *testing.T) {
	var buf bytes.Buffer
	if err := FilterTags(&buf, []byte("<div><script>x</script></div>")); err != nil {
		t.Fatalf("FilterTags: %v", err)
	}
	want := "<div>&lt;script>x&lt;/script></div>"
	if buf.String() != want {
		t.Fatalf("FilterTags: want %q got %q", want, buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink closed")
}

func TestEscapePropagatesWriteErrors(t *testing.T) {
	if err := Escape(failingWriter{}, []byte("a&b")); err == nil {
		t.Fatalf("expected write error from Escape")
	}
	if err := EscapeHref(failingWriter{}, []byte("a b")); err == nil {
		t.Fatalf("expected write error from EscapeHref")
	}
}
