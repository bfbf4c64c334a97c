package doctree

import "strings"

// Kind identifies the node variant stored at an arena slot.
type Kind uint8

const (
	KindDocument Kind = iota
	KindBlockQuote
	KindList
	KindItem
	KindTaskItem
	KindDescriptionList
	KindDescriptionTerm
	KindDescriptionDetails
	KindHeading
	KindCodeBlock
	KindHTMLBlock
	KindThematicBreak
	KindParagraph
	KindText
	KindCode
	KindHTMLInline
	KindEmph
	KindStrong
	KindStrikethrough
	KindSuperscript
	KindLink
	KindImage
	KindLineBreak
	KindSoftBreak
	KindTable
	KindTableRow
	KindTableCell
	KindFootnoteDefinition
	KindFootnoteReference
	KindAlert
	KindShortCode
	KindUnknown
)

var kindNames = [...]string{
	KindDocument:           "document",
	KindBlockQuote:         "block_quote",
	KindList:               "list",
	KindItem:               "item",
	KindTaskItem:           "task_item",
	KindDescriptionList:    "description_list",
	KindDescriptionTerm:    "description_term",
	KindDescriptionDetails: "description_details",
	KindHeading:            "heading",
	KindCodeBlock:          "code_block",
	KindHTMLBlock:          "html_block",
	KindThematicBreak:      "thematic_break",
	KindParagraph:          "paragraph",
	KindText:               "text",
	KindCode:               "code",
	KindHTMLInline:         "html_inline",
	KindEmph:               "emph",
	KindStrong:             "strong",
	KindStrikethrough:      "strikethrough",
	KindSuperscript:        "superscript",
	KindLink:               "link",
	KindImage:              "image",
	KindLineBreak:          "line_break",
	KindSoftBreak:          "soft_break",
	KindTable:              "table",
	KindTableRow:           "table_row",
	KindTableCell:          "table_cell",
	KindFootnoteDefinition: "footnote_definition",
	KindFootnoteReference:  "footnote_reference",
	KindAlert:              "alert",
	KindShortCode:          "short_code",
	KindUnknown:            "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsBlock reports whether the kind is a block-level container or leaf.
func (k Kind) IsBlock() bool {
	switch k {
	case KindDocument, KindBlockQuote, KindList, KindItem, KindTaskItem,
		KindDescriptionList, KindDescriptionTerm, KindDescriptionDetails,
		KindHeading, KindCodeBlock, KindHTMLBlock, KindThematicBreak,
		KindParagraph, KindTable, KindTableRow, KindTableCell,
		KindFootnoteDefinition, KindAlert:
		return true
	}
	return false
}

// Alignment is the horizontal alignment of a table column.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Attr returns the attribute value used for the column alignment, or "" when
// the column has no explicit alignment.
func (a Alignment) Attr() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}

// AlertType is the severity of an admonition block.
type AlertType uint8

const (
	AlertNote AlertType = iota
	AlertTip
	AlertImportant
	AlertWarning
	AlertCaution
)

// ParseAlertType maps a marker such as "note" or "WARNING" to its severity.
func ParseAlertType(marker string) (AlertType, bool) {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "note":
		return AlertNote, true
	case "tip":
		return AlertTip, true
	case "important":
		return AlertImportant, true
	case "warning":
		return AlertWarning, true
	case "caution":
		return AlertCaution, true
	}
	return AlertNote, false
}

// DefaultTitle is the heading shown when an alert has no explicit title.
func (t AlertType) DefaultTitle() string {
	switch t {
	case AlertTip:
		return "Tip"
	case AlertImportant:
		return "Important"
	case AlertWarning:
		return "Warning"
	case AlertCaution:
		return "Caution"
	}
	return "Note"
}
