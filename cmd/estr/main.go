package main

import (
	"fmt"
	"os"

	"estr-go/pkg/config"
	"estr-go/pkg/log"

	"github.com/urfave/cli/v2"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// cfgKey is where Before stores the loaded config for the commands.
const cfgKey = "estr.config"

func newApp() *cli.App {
	return &cli.App{
		Name:    "estr",
		Usage:   "binary-safe strings: escape embedded NULs, compare, inspect growth",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration `FILE` (default: estr.yaml in ., /etc/estr-go, ~/.estr-go)",
				EnvVars: []string{"ESTR_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log at debug level to stderr",
			},
			&cli.StringFlag{
				Name:  "log-db",
				Usage: "Also record logs in the SQLite database `PATH`",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			return log.Close()
		},
		Commands: []*cli.Command{
			escapeCommand,
			compareCommand,
			statsCommand,
			serveCommand,
			logsCommand,
		},
	}
}

// setup loads the configuration and prepares logging. The logs command
// opens the database itself.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	c.App.Metadata = map[string]interface{}{cfgKey: cfg}

	dbFile := cfg.LogDB
	if c.IsSet("log-db") {
		dbFile = c.String("log-db")
	}
	isLogs := c.Args().First() == logsCommand.Name
	if dbFile != "" && !isLogs {
		if err := log.Init(dbFile); err != nil {
			return cli.Exit(fmt.Sprintf("Error initializing log database: %v", err), 2)
		}
	} else {
		log.SetConsole(c.App.ErrWriter)
	}

	level := cfg.LogLevel
	if c.Bool("debug") {
		level = "debug"
	}
	if err := log.SetLevel(level); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[cfgKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
