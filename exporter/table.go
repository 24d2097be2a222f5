package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/gavelak/gavel-exporter/internal/models"
)

// renderMeetingsTable lays the normalized meetings out for terminal preview.
func renderMeetingsTable(meetings []models.Meeting) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Date", "Time", "Title", "Status", "Location", "Bills"})

	for _, m := range meetings {
		numbers := make([]string, 0, len(m.Bills))
		for _, b := range m.Bills {
			numbers = append(numbers, b.Number)
		}
		tw.AppendRow(table.Row{
			m.Date.Format("2006-01-02"),
			m.StartTime,
			m.Title,
			m.Status,
			m.Location,
			strings.Join(numbers, ", "),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 40, AlignHeader: text.AlignLeft},
		{Number: 6, WidthMax: 30},
	})

	return tw.Render()
}
