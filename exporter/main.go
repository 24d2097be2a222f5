// Command exporter fetches legislative meetings for a date or range without a
// browser session: it previews them as a table and can write the standard CSV
// to disk.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gavelak/gavel-exporter/internal/basis"
	"github.com/gavelak/gavel-exporter/internal/config"
	"github.com/gavelak/gavel-exporter/internal/daterange"
	"github.com/gavelak/gavel-exporter/internal/export"
	"github.com/gavelak/gavel-exporter/internal/logger"
	"github.com/gavelak/gavel-exporter/internal/pipeline"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "exporter",
		Usage: "Fetch legislative meetings and export them as CSV",
		Commands: []*cli.Command{
			fetchCmd(),
		},
	}
}

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch meetings for a date or date range",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Single date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "start", Usage: "Range start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Usage: "Range end date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the standard CSV to this file"},
		},
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	cfg, err := config.LoadExporter()
	if err != nil {
		return err
	}

	var dates []time.Time
	switch {
	case c.String("date") != "":
		dates, err = daterange.Resolve(c.String("date"))
	case c.String("start") != "" && c.String("end") != "":
		dates, err = daterange.ResolveRange(c.String("start"), c.String("end"), cfg.MaxRangeDays)
	default:
		return fmt.Errorf("either --date or both --start and --end are required")
	}
	if err != nil {
		return err
	}

	log := logger.NewWithWriter("exporter", os.Stderr)
	client := basis.New(cfg.BasisBaseURL, cfg.BasisVersion, cfg.FetchTimeout, log)
	runner := pipeline.NewRunner(client, cfg.FetchWorkers, log)

	result := runner.Run(context.Background(), dates)

	for _, f := range result.Failed {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", f.Date.Format(daterange.Layout), f.Err)
	}
	if n := len(result.Dropped); n > 0 {
		fmt.Fprintf(os.Stderr, "warning: dropped %d malformed record(s)\n", n)
	}

	if len(result.Meetings) == 0 {
		fmt.Println("No meetings found.")
	} else {
		fmt.Println(renderMeetingsTable(result.Meetings))
	}

	if out := c.String("out"); out != "" {
		data, err := export.Standard(result.Meetings)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %d meeting(s) to %s\n", len(result.Meetings), out)
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d date(s) failed to fetch", len(result.Failed))
	}
	return nil
}
