package main

import (
	"errors"
	"fmt"
	"time"

	"estr-go/pkg/log"

	"github.com/urfave/cli/v2"
)

// timeFormats are tried in order when a time spec is not a duration.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimeSpec accepts either a duration back from now ("1h", "30m") or
// an absolute timestamp in one of timeFormats.
func parseTimeSpec(spec string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range timeFormats {
		if ts, err := time.ParseInLocation(layout, spec, now.Location()); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time specification: '%s'. Use a duration (e.g. '1h', '30m') or a timestamp (e.g. '2023-10-27T15:04:05Z')", spec)
}

var logsCommand = &cli.Command{
	Name:      "logs",
	Usage:     "Print JSON log entries recorded in the SQLite log database",
	UsageText: "estr logs [--log-db PATH] [-n NUMBER | -s TIME_SPEC [-l NUMBER]]",
	Description: `Reads the database given by --log-db or log_db in the config.
Without --since the most recent entries are printed, oldest first.`,
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of most recent entries `NUMBER`",
			Value:   20,
		},
		&cli.StringFlag{
			Name:    "since",
			Aliases: []string{"s"},
			Usage:   "Entries since `TIME_SPEC` (e.g. '1h', '2023-10-27T10:00:00Z')",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Max entries with --since `NUMBER`",
			Value:   log.DefaultLimit,
		},
	},
	Action: logsCmd,
}

func logsCmd(c *cli.Context) error {
	dbFile := configFrom(c).LogDB
	if c.IsSet("log-db") {
		dbFile = c.String("log-db")
	}
	if dbFile == "" {
		return cli.Exit("Error: no log database; pass --log-db or set log_db.", 2)
	}

	if err := log.Init(dbFile); err != nil {
		return cli.Exit(fmt.Sprintf("Error opening log database: %v", err), 1)
	}
	defer log.Close()

	var entries []log.LogEntry
	var err error
	if c.IsSet("since") {
		start, perr := parseTimeSpec(c.String("since"), time.Now())
		if perr != nil {
			return cli.Exit(perr.Error(), 2)
		}
		entries, err = log.GetLogsSince(start, c.Int("limit"))
	} else {
		count := c.Int("count")
		if count <= 0 {
			return cli.Exit("Error: --count (-n) must be a positive number.", 2)
		}
		entries, err = log.GetLastNLogs(count)
	}
	if err != nil {
		if errors.Is(err, log.ErrNotInitialized) {
			return cli.Exit("Internal Error: log database handle became unavailable.", 2)
		}
		return cli.Exit(fmt.Sprintf("Error retrieving logs: %v", err), 1)
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.App.ErrWriter, "No log entries found.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(c.App.Writer, e.LogData)
	}
	return nil
}
