package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table lays out rows under column headers inside a rounded border
type Table struct {
	title      string
	headers    []string
	rows       []tableRow
	widths     []int
	hideHeader bool
	minWidth   int
}

type tableRow struct {
	cells     []string
	highlight bool
}

// NewTable creates a table with the given column headers
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// SetTitle sets a line rendered above the headers
func (t *Table) SetTitle(title string) {
	t.title = title
}

// HideHeader leaves out the header row and its separator
func (t *Table) HideHeader() {
	t.hideHeader = true
}

// SetMinWidth pads the last column so the table is at least width wide
func (t *Table) SetMinWidth(width int) {
	t.minWidth = width
}

// AddRow appends a row; missing cells are blank and extra cells are dropped
func (t *Table) AddRow(cells ...string) {
	t.add(cells, false)
}

// AddHighlightedRow appends a row rendered in the highlight color
func (t *Table) AddHighlightedRow(cells ...string) {
	t.add(cells, true)
}

func (t *Table) add(cells []string, highlight bool) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, cell := range row {
		// lipgloss.Width ignores ANSI sequences
		if w := lipgloss.Width(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, tableRow{cells: row, highlight: highlight})
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Render returns the table as a string
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	initStyles()

	total := 0
	for _, w := range t.widths {
		total += w + 2
	}
	widths := append([]int(nil), t.widths...)
	if total < t.minWidth {
		widths[len(widths)-1] += t.minWidth - total
		total = t.minWidth
	}

	var lines []string
	if t.title != "" {
		lines = append(lines,
			StyleTitle.Width(total).Align(lipgloss.Center).Render(t.title),
			StyleMuted.Render(strings.Repeat("─", total)),
		)
	}

	if !t.hideHeader {
		var header, separator strings.Builder
		for i, h := range t.headers {
			header.WriteString(StyleTableHeader.Width(widths[i] + 2).Render(h))
			separator.WriteString(StyleMuted.Render(strings.Repeat("─", widths[i]+2)))
		}
		lines = append(lines, header.String(), separator.String())
	}

	for _, row := range t.rows {
		style := StyleTableCell
		if row.highlight {
			style = StyleTableHighlight
		}
		var line strings.Builder
		for i, cell := range row.cells {
			line.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		lines = append(lines, line.String())
	}

	return StyleTableBorder.Render(strings.Join(lines, "\n"))
}
