package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/starford/donno/internal/models"
	"github.com/starford/donno/internal/noteservice"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	ordinalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	notebookStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

const titleWidth = 40

// pad truncates s to width cells and right-pads it with spaces.
func pad(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

func printListing(w io.Writer, notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "no notes found")
		return
	}
	ordWidth := max(1, len(strconv.Itoa(len(notes))))
	fmt.Fprintln(w, headerStyle.Render(strings.Join([]string{
		pad("#", ordWidth), pad("Updated", len(models.TimeLayout)), pad("Title", titleWidth), "Notebook / Tags",
	}, "  ")))
	for i, n := range notes {
		tags := strings.Join(lo.Map(n.Tags, func(t string, _ int) string { return "#" + t }), " ")
		fmt.Fprintf(w, "%s  %s  %s  %s %s\n",
			ordinalStyle.Render(pad(strconv.Itoa(i+1), ordWidth)),
			models.FormatTime(n.Updated),
			pad(n.Title, titleWidth),
			notebookStyle.Render(n.Notebook),
			tagStyle.Render(tags),
		)
	}
}

func printSkipped(w io.Writer, failed []noteservice.FileError) {
	if len(failed) == 0 {
		return
	}
	names := lo.Map(failed, func(f noteservice.FileError, _ int) string { return filepath.Base(f.Path) })
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("skipped %d malformed note(s): %s", len(failed), strings.Join(names, ", "))))
}

func printNotebooks(w io.Writer, nbs []noteservice.NotebookCount) {
	if len(nbs) == 0 {
		fmt.Fprintln(w, "no notebooks")
		return
	}
	width := lo.Max(lo.Map(nbs, func(nb noteservice.NotebookCount, _ int) int { return lipgloss.Width(nb.Notebook) }))
	for _, nb := range nbs {
		fmt.Fprintf(w, "%s  %d\n", notebookStyle.Render(pad(nb.Notebook, width)), nb.Notes)
	}
}
