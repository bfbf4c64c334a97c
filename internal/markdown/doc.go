// Package markdown turns the Markdown files of a space directory into pages:
// front matter, a document tree, the page title and the local files each
// page refers to. Rendering of the tree lives in storagefmt.
package markdown
