package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estr-go/pkg/api"
	"estr-go/pkg/log"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Serve /escape, /compare, /stats and /metrics over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "Listen `ADDRESS` (default: api_listen_address from config)",
		},
	},
	Action: serveCmd,
}

func serveCmd(c *cli.Context) error {
	cfg := *configFrom(c)
	if c.IsSet("listen") {
		cfg.APIListenAddr = c.String("listen")
	}
	a, err := api.NewApi(&cfg)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	return a.Run()
}
