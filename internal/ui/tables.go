package ui

import (
	"fmt"
	"strings"
)

// Table creates a formatted table for output
type Table struct {
	headers  []string
	rows     [][]string
	maxWidth int
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers:  headers,
		rows:     [][]string{},
		maxWidth: 120,
	}
}

// SetMaxWidth sets the maximum table width
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table to stdout
func (t *Table) Render() {
	fmt.Print(t.String())
}

// String renders the table
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := t.columnWidths()
	var sb strings.Builder

	writeRule := func(left, mid, right string) {
		sb.WriteString(left)
		for i, w := range widths {
			sb.WriteString(strings.Repeat("─", w))
			if i < len(widths)-1 {
				sb.WriteString(mid)
			}
		}
		sb.WriteString(right + "\n")
	}

	writeRow := func(cells []string) {
		sb.WriteString("│")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if len(cell) > w-2 {
				cell = truncate(cell, w-2)
			}
			sb.WriteString(" " + cell + strings.Repeat(" ", w-len(cell)-1))
			sb.WriteString("│")
		}
		sb.WriteString("\n")
	}

	writeRule("┌", "┬", "┐")
	writeRow(t.headers)
	writeRule("├", "┼", "┤")
	for _, row := range t.rows {
		writeRow(row)
	}
	writeRule("└", "┴", "┘")

	return sb.String()
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	totalWidth := 0
	for i, h := range t.headers {
		widths[i] = len(h)
		for _, row := range t.rows {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		widths[i] += 2
		totalWidth += widths[i] + 1
	}

	// Shrink the widest columns until the table fits
	if totalWidth > t.maxWidth {
		excess := totalWidth - t.maxWidth
		for excess > 0 {
			maxIdx := 0
			for i := 1; i < len(widths); i++ {
				if widths[i] > widths[maxIdx] {
					maxIdx = i
				}
			}
			if widths[maxIdx] <= 10 {
				break
			}
			widths[maxIdx]--
			excess--
		}
	}

	return widths
}

func truncate(s string, n int) string {
	if n <= 1 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
