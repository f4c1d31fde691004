package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printBanner renders a boxed run header with key/value lines.
func printBanner(w io.Writer, title string, fields ...[2]string) {
	content := titleStyle.Render(title)
	for _, f := range fields {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render(f[0]+":"), f[1])
	}
	fmt.Fprintln(w, bannerStyle.Render(content))
}

// printTable renders rows under headers with a rounded border.
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// printResult prints a one-line outcome, green when there are no warnings.
func printResult(w io.Writer, msg string, warnings int) {
	if warnings == 0 {
		fmt.Fprintln(w, successStyle.Render("✓ "+msg))
		return
	}
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("✓ %s (%d warnings)", msg, warnings)))
}

func itoa(n int) string { return strconv.Itoa(n) }
