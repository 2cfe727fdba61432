package main

import (
	"fmt"
	"io"
	"strings"

	"paper_summaries_go_backend/internal/client"
	"paper_summaries_go_backend/internal/models"

	"github.com/mattn/go-runewidth"
)

const (
	maxTitleWidth   = 48
	maxAuthorsWidth = 32
)

// renderTable writes rows as a column-aligned table. Widths are measured in
// terminal cells so CJK titles line up.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if width := runewidth.StringWidth(row[i]); width > widths[i] {
				widths[i] = width
			}
		}
	}

	writeRow := func(row []string) error {
		var sb strings.Builder
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				continue
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
		return err
	}

	if err := writeRow(header); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	if err := writeRow(rule); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func paperRows(papers []models.Paper) [][]string {
	rows := make([][]string, 0, len(papers))
	for _, p := range papers {
		rows = append(rows, []string{
			p.ID,
			p.PublicationDate.String(),
			string(p.Category),
			runewidth.Truncate(p.Title, maxTitleWidth, "…"),
			runewidth.Truncate(strings.Join(p.Authors, ", "), maxAuthorsWidth, "…"),
		})
	}
	return rows
}

func renderPapers(w io.Writer, papers []models.Paper, info client.PageInfo) error {
	if len(papers) == 0 {
		_, err := fmt.Fprintln(w, "No papers found.")
		return err
	}
	if err := renderTable(w, []string{"ID", "PUBLISHED", "CATEGORY", "TITLE", "AUTHORS"}, paperRows(papers)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npage %d of %d (%d papers)\n", info.CurrentPage, info.TotalPages, info.Total)
	return err
}

func renderPaper(w io.Writer, p models.Paper) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", p.Title)
	fmt.Fprintf(&sb, "%s\n", strings.Repeat("=", runewidth.StringWidth(p.Title)))
	fmt.Fprintf(&sb, "ID:         %s\n", p.ID)
	fmt.Fprintf(&sb, "Authors:    %s\n", strings.Join(p.Authors, ", "))
	fmt.Fprintf(&sb, "Published:  %s\n", p.PublicationDate)
	fmt.Fprintf(&sb, "Category:   %s\n", p.Category)
	section := func(heading, body string) {
		fmt.Fprintf(&sb, "\n%s\n  %s\n", heading, body)
	}
	section("Abstract", p.Abstract)
	section("Problem", p.Summary.Problem)
	section("Method", p.Summary.Method)
	section("Dataset", p.Summary.Dataset)
	section("Key results", p.Summary.KeyResults)
	section("Takeaway", p.Summary.Takeaway)
	_, err := io.WriteString(w, sb.String())
	return err
}
