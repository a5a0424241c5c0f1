package main

import (
	"fmt"
	"io"
	"os"

	"estr-go/pkg/config"
	"estr-go/pkg/estr"
	"estr-go/pkg/log"
	"estr-go/pkg/transform"

	"github.com/urfave/cli/v2"
)

var escapeCommand = &cli.Command{
	Name:      "escape",
	Usage:     "Write FILE (or stdin) as a NUL-free string, replacing each embedded NUL",
	ArgsUsage: "[FILE]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "escape",
			Aliases: []string{"e"},
			Usage:   "Replacement `SEQ` for each NUL byte; empty drops them (default: nul_escape from config)",
		},
		&cli.Uint64Flag{
			Name:  "hint",
			Usage: "Initial capacity hint in `BYTES` (default: capacity_hint from config)",
		},
		&cli.IntFlag{
			Name:  "chunk",
			Usage: "Append input in chunks of `BYTES` (default: chunk_size from config)",
		},
		&cli.StringFlag{
			Name:  "compress",
			Usage: "Post-process the output with `NAME`: none, gzip or zstd (default: compression from config)",
		},
		&cli.BoolFlag{
			Name:  "keep-nul",
			Usage: "Write the terminating NUL byte too",
		},
	},
	Action: escapeCmd,
}

// applyOverrides copies the flags that were set onto a copy of cfg.
func applyOverrides(c *cli.Context, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if c.IsSet("escape") {
		out.NulEscape = c.String("escape")
	}
	if c.IsSet("hint") {
		out.CapacityHint = c.Uint64("hint")
	}
	if c.IsSet("chunk") {
		out.ChunkSize = c.Int("chunk")
	}
	if c.IsSet("compress") {
		out.Compression = c.String("compress")
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// openInput returns the named file, or the app reader for "" and "-".
func openInput(c *cli.Context, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(c.App.Reader), nil
	}
	return os.Open(name)
}

// loadStr reads r into a new string, appending chunk bytes at a time.
func loadStr(cfg *config.Config, r io.Reader) (*estr.Str, error) {
	s, err := estr.NewWithAllocator(cfg.NewAllocator(), cfg.CapacityHint)
	if err != nil {
		return nil, err
	}
	// hide any WriterTo so every chunk goes through Append
	if _, err := io.CopyBuffer(s, struct{ io.Reader }{r}, make([]byte, cfg.ChunkSize)); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func escapeCmd(c *cli.Context) error {
	cfg, err := applyOverrides(c, configFrom(c))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	in, err := openInput(c, c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening input: %v", err), 1)
	}
	defer in.Close()

	s, err := loadStr(cfg, in)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading input: %v", err), 1)
	}
	defer s.Destroy()

	cstr, err := s.ToCString(cfg.Escape())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error externalizing: %v", err), 1)
	}
	if !c.Bool("keep-nul") {
		cstr = cstr[:len(cstr)-1]
	}

	pipeline, err := transform.NewPipelineByName(cfg.Compression)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	out, err := pipeline.PrepareOutput(cstr)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error transforming output: %v", err), 1)
	}

	log.Debug().Uint64("length", s.Len()).Uint64("capacity", s.Cap()).Int("out", len(out)).Msg("escape done")
	_, err = c.App.Writer.Write(out)
	return err
}
