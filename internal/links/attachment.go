package links

import "strings"

var flatNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// FlatName maps a possibly nested relative path onto the single-level name
// used for remote attachments. Every separator becomes an underscore and all
// other characters, leading dots included, are preserved. Distinct paths may
// flatten to the same name; collisions are not detected.
func FlatName(rel string) string {
	return flatNameReplacer.Replace(rel)
}

// AttachmentName is the remote attachment name for a link as written. Any
// #fragment selects a location inside the file and is not part of the name.
func AttachmentName(link string) string {
	link, _, _ = strings.Cut(link, "#")
	return FlatName(link)
}
