package storagefmt

import (
	"strings"

	"github.com/goliatone/go-markspace/internal/doctree"
)

// ExpandMarker prefixes alert titles that should render as a collapsible
// block instead of a coloured panel.
const ExpandMarker = "[expand]"

// alertMacro returns the panel macro used for each severity.
func alertMacro(t doctree.AlertType) string {
	switch t {
	case doctree.AlertTip:
		return "tip"
	case doctree.AlertImportant, doctree.AlertWarning:
		return "note"
	case doctree.AlertCaution:
		return "warning"
	}
	return "info"
}

func expandTitle(alert doctree.AlertData) (string, bool) {
	if !strings.HasPrefix(alert.Title, ExpandMarker) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(alert.Title, ExpandMarker)), true
}

func alertOpen(alert doctree.AlertData) string {
	var b strings.Builder
	if title, ok := expandTitle(alert); ok {
		b.WriteString(`<ac:structured-macro ac:name="expand">`)
		if title != "" {
			b.WriteString(`<ac:parameter ac:name="title">`)
			b.WriteString(EscapeString(title))
			b.WriteString(`</ac:parameter>`)
		}
		b.WriteString(`<ac:rich-text-body>`)
		return b.String()
	}

	title := strings.TrimSpace(alert.Title)
	if title == "" {
		title = alert.Type.DefaultTitle()
	}
	b.WriteString(`<ac:structured-macro ac:name="`)
	b.WriteString(alertMacro(alert.Type))
	b.WriteString(`"><ac:rich-text-body><p><strong>`)
	b.WriteString(EscapeString(title))
	b.WriteString(`</strong></p>`)
	return b.String()
}

func alertClose(doctree.AlertData) string {
	return `</ac:rich-text-body></ac:structured-macro>`
}
