// Package ui renders terminal output for the splash CLI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders aligned columns under a colored header
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{w: w, headers: headers, noColor: noColor}
}

// AddRow appends a row; missing cells render empty, extra cells are dropped
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	head := t.color(color.Bold, color.FgCyan)
	rule := t.color(color.FgHiBlack)

	for i, h := range t.headers {
		head.Fprint(t.w, t.cell(h, i, widths))
	}
	fmt.Fprintln(t.w)

	for i, width := range widths {
		rule.Fprint(t.w, t.cell(strings.Repeat("─", width), i, widths))
	}
	fmt.Fprintln(t.w)

	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprint(t.w, t.cell(cell, i, widths))
		}
		fmt.Fprintln(t.w)
	}
}

// cell pads every column except the last and separates columns by two spaces
func (t *Table) cell(s string, i int, widths []int) string {
	if i == len(widths)-1 {
		return s
	}
	return padRight(s, widths[i]) + "  "
}

func (t *Table) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}

// padRight pads by byte length, which matches the ASCII tokens shown here
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValueTable renders "key: value" lines with aligned values
type KeyValueTable struct {
	w       io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{w: w, noColor: noColor}
}

// AddRow appends a key-value pair
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		if len(k) > width {
			width = len(k)
		}
	}

	cyan := color.New(color.FgCyan)
	if t.noColor {
		cyan.DisableColor()
	}
	for i, k := range t.keys {
		cyan.Fprint(t.w, padRight(k+":", width+1))
		fmt.Fprintf(t.w, " %s\n", t.values[i])
	}
}
