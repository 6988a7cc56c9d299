package ui

import "strings"

// Columns aligns rows of cells into padded columns, with no borders.
// ResultsTable handles the heavyweight search layouts; this covers the
// small label/count listings (stats, session summaries).
type Columns struct {
	indent string
	rows   [][]string
	widths []int
}

// NewColumns builds an aligner whose every line starts with indent.
func NewColumns(indent string) *Columns {
	return &Columns{indent: indent}
}

// Row appends one row. Rows may have differing cell counts; columns
// grow to fit the widest row.
func (c *Columns) Row(cells ...string) {
	for len(c.widths) < len(cells) {
		c.widths = append(c.widths, 0)
	}
	for i, cell := range cells {
		if w := len([]rune(cell)); w > c.widths[i] {
			c.widths[i] = w
		}
	}
	c.rows = append(c.rows, cells)
}

// String renders the rows, two spaces between columns, last cell unpadded.
func (c *Columns) String() string {
	var sb strings.Builder
	for _, row := range c.rows {
		sb.WriteString(c.indent)
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", c.widths[i]-len([]rune(cell))+2))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
