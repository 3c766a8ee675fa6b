package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"starrlist/internal/journal"
)

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderHistoryTable lays out journal entries, newest first.
func renderHistoryTable(entries []journal.Entry) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Time", "App", "Event", "Action", "Title", "Year", "Outcome"})
	for _, entry := range entries {
		year := ""
		if entry.Year > 0 {
			year = strconv.Itoa(entry.Year)
		}
		tw.AppendRow(table.Row{
			entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			entry.App,
			entry.EventType,
			entry.Action,
			entry.Title,
			year,
			entry.Outcome,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderStatusTable lays out item/value pairs.
func renderStatusTable(rows [][2]string) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Item", "Value"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	return tw.Render()
}
