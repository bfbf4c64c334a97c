// Package storagefmt serialises a doctree.Tree into the wiki storage format.
//
// Rendering is single threaded and owns its counters for the duration of one
// document. Cross-document links are resolved through a TitleResolver that
// must be fully populated before the first render.
package storagefmt
