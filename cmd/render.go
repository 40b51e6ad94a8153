package main

import (
	"io"
	"math"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/amirphl/simple-indicators/internal/frame"
)

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderTail prints the last n rows of t.
func renderTail(w io.Writer, title string, t *frame.Table, n int) {
	tail := t.Tail(n)
	tw := newTable(w)
	tw.SetTitle("%s (last %d of %d rows)", title, tail.Len(), t.Len())

	header := table.Row{"timestamp"}
	cols := tail.Columns()
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header = append(header, c)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for i, ts := range tail.Index() {
		row := table.Row{ts.UTC().Format(time.RFC3339)}
		for _, v := range tail.Row(i) {
			row = append(row, formatValue(v))
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

// renderSummary prints descriptive statistics of the named columns.
func renderSummary(w io.Writer, title string, t *frame.Table, columns []string) {
	tw := newTable(w)
	tw.SetTitle("%s summary", title)
	tw.AppendHeader(table.Row{"column", "count", "mean", "std", "min", "max"})
	for _, s := range t.Describe(columns...) {
		tw.AppendRow(table.Row{s.Column, s.Count, formatValue(s.Mean), formatValue(s.Std), formatValue(s.Min), formatValue(s.Max)})
	}
	tw.Render()
}
