// Package doctree holds the parsed form of a space page as an arena of nodes.
// Nodes are addressed by NodeID and reference their children by index, so
// structural edits such as detaching the title heading never copy subtrees.
package doctree
