package main

import (
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	invisibleRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
				PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

// markedTable is a table where some rows can be highlighted.
type markedTable struct {
	Table  *lgtable.Table
	Count  int
	Marked map[int]bool
}

// Row appends a row, highlighted if marked is true.
func (t *markedTable) Row(marked bool, row ...string) {
	if marked {
		t.Marked[t.Count] = true
	}
	t.Table.Row(row...)
	t.Count++
}

func newPlainTable(withHeader bool, alignments ...lipgloss.Position) *lgtable.Table {
	return newMarkedTable(withHeader, alignments...).Table
}

// newMarkedTable creates a table with alternating row styles. Column alignments default to right
// for the first column and left for the others.
func newMarkedTable(withHeader bool, alignments ...lipgloss.Position) *markedTable {
	t := &markedTable{Marked: make(map[int]bool)}
	t.Table = lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row < 0 {
				return headerRowStyle
			}
			switch {
			case t.Marked[row]:
				s = invisibleRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			if col < len(alignments) {
				return s.Align(alignments[col])
			}
			if col == 0 {
				return s.Align(lipgloss.Right)
			}
			return s.Align(lipgloss.Left)
		})
	return t
}
