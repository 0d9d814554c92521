package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
)

const maxNameWidth = 24

// table renders rows as aligned columns. Cells are measured by display
// width so names with wide runes stay aligned.
type table struct {
	header []string
	right  []bool // right-align column
	rows   [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(w io.Writer) error {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var b strings.Builder
	line := func(row []string) {
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if t.right[i] {
				b.WriteString(runewidth.FillLeft(c, widths[i]))
			} else if i < len(row)-1 {
				b.WriteString(runewidth.FillRight(c, widths[i]))
			} else {
				b.WriteString(c)
			}
		}
		b.WriteString("\n")
	}
	line(t.header)
	sep := make([]string, len(widths))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	line(sep)
	for _, row := range t.rows {
		line(row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeLeaderboard prints ranked entries with the column used for sorting
// marked in the header.
func writeLeaderboard(w io.Writer, title string, entries []ranking.Entry, view model.View, metric scoring.Metric) error {
	if _, err := fmt.Fprintf(w, "%s  (%s, %s)\n", title, view.Label(), strings.ToUpper(metric.String())); err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := io.WriteString(w, "no athletes\n")
		return err
	}

	t := &table{
		header: []string{"#", "Name", "Sex", "Class", "Squat", "Bench", "Deadlift", "Total", "GL"},
		right:  []bool{true, false, false, false, true, true, true, true, true},
	}
	sortCol := 7
	if l, ok := view.Lift(); ok {
		sortCol = 4 + int(l)
	} else if metric == scoring.MetricNormalized {
		sortCol = 8
	}
	t.header[sortCol] += "*"

	for _, e := range entries {
		t.add(
			fmt.Sprint(e.Place),
			runewidth.Truncate(e.Name, maxNameWidth, "…"),
			string(e.Sex),
			e.WeightClass,
			e.Best(model.Squat).String(),
			e.Best(model.Bench).String(),
			e.Best(model.Deadlift).String(),
			e.Total.String(),
			fmt.Sprintf("%.2f", e.Score),
		)
	}
	return t.write(w)
}
