package storagefmt

import "github.com/goliatone/go-markspace/internal/doctree"

func (s *renderState) leaveTable(id doctree.NodeID) error {
	if s.tree.LastChild(id) != s.tree.FirstChild(id) {
		if err := s.out.cr(); err != nil {
			return err
		}
		if err := s.write("</tbody>\n"); err != nil {
			return err
		}
	}
	if err := s.out.cr(); err != nil {
		return err
	}
	return s.write("</table>\n")
}

func (s *renderState) enterTableRow(id doctree.NodeID, n *doctree.Node) error {
	if err := s.out.cr(); err != nil {
		return err
	}
	if n.Header {
		if err := s.write("<thead>\n"); err != nil {
			return err
		}
	} else if prev := s.tree.PreviousSibling(id); prev != doctree.NoNode && s.tree.Node(prev).Header {
		if err := s.write("<tbody>\n"); err != nil {
			return err
		}
	}
	return s.write("<tr>")
}

func (s *renderState) leaveTableRow(n *doctree.Node) error {
	if err := s.out.cr(); err != nil {
		return err
	}
	if err := s.write("</tr>"); err != nil {
		return err
	}
	if !n.Header {
		return nil
	}
	if err := s.out.cr(); err != nil {
		return err
	}
	return s.write("</thead>")
}

func (s *renderState) cellInHeader(id doctree.NodeID) bool {
	row := s.tree.Parent(id)
	return s.tree.KindOf(row) == doctree.KindTableRow && s.tree.Node(row).Header
}

func (s *renderState) cellAlignment(id doctree.NodeID) doctree.Alignment {
	table := s.tree.Parent(s.tree.Parent(id))
	if s.tree.KindOf(table) != doctree.KindTable {
		return doctree.AlignNone
	}
	alignments := s.tree.Node(table).Alignments
	if idx := s.tree.Index(id); idx >= 0 && idx < len(alignments) {
		return alignments[idx]
	}
	return doctree.AlignNone
}

func (s *renderState) enterTableCell(id doctree.NodeID) error {
	if err := s.out.cr(); err != nil {
		return err
	}
	tag := "<td"
	if s.cellInHeader(id) {
		tag = "<th"
	}
	if err := s.write(tag); err != nil {
		return err
	}
	if attr := s.cellAlignment(id).Attr(); attr != "" {
		if err := s.write(` align="`, attr, `"`); err != nil {
			return err
		}
	}
	return s.write(">")
}

func (s *renderState) leaveTableCell(id doctree.NodeID) error {
	if s.cellInHeader(id) {
		return s.write("</th>")
	}
	return s.write("</td>")
}
