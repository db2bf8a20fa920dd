package ui

import "strings"

// Table is a minimal bordless table: left-aligned columns separated by
// spacing, an optional muted header row. Used for graph listings.
type Table struct {
	header    []string
	rows      [][]string
	colWidths []int
	padding   int
}

// NewTable creates a table with the given number of columns.
func NewTable(cols int) *Table {
	return &Table{
		colWidths: make([]int, cols),
		padding:   2,
	}
}

// Header sets the header row, rendered muted above the data rows.
func (t *Table) Header(cells ...string) {
	t.header = t.fit(cells)
}

// AddRow appends one data row. Extra cells are dropped, missing cells are
// blank.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, t.fit(cells))
}

func (t *Table) fit(cells []string) []string {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(t.colWidths) && i < len(cells); i++ {
		row[i] = cells[i]
		if len(cells[i]) > t.colWidths[i] {
			t.colWidths[i] = len(cells[i])
		}
	}
	return row
}

// String renders the table.
func (t *Table) String() string {
	if len(t.rows) == 0 && t.header == nil {
		return ""
	}

	var sb strings.Builder
	if t.header != nil {
		sb.WriteString(Muted.Render(strings.TrimRight(t.renderRow(t.header), " ")))
		sb.WriteString("\n")
	}
	for _, row := range t.rows {
		sb.WriteString(strings.TrimRight(t.renderRow(row), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Table) renderRow(row []string) string {
	var sb strings.Builder
	pad := strings.Repeat(" ", t.padding)
	for i, cell := range row {
		if i > 0 {
			sb.WriteString(pad)
		}
		sb.WriteString(cell)
		if i < len(row)-1 {
			sb.WriteString(strings.Repeat(" ", t.colWidths[i]-len(cell)))
		}
	}
	return sb.String()
}
