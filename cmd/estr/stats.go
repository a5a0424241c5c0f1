package main

import (
	"fmt"

	"estr-go/pkg/buffers"
	"estr-go/pkg/estr"

	"github.com/urfave/cli/v2"
)

var statsCommand = &cli.Command{
	Name:      "stats",
	Usage:     "Load FILE (or stdin) and report length, capacity and growth",
	ArgsUsage: "[FILE]",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "hint", Usage: "Initial capacity hint in `BYTES`"},
		&cli.IntFlag{Name: "chunk", Usage: "Append input in chunks of `BYTES`"},
	},
	Action: statsCmd,
}

func statsCmd(c *cli.Context) error {
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

	nul := s.CountByte(0)

	w := c.App.Writer
	fmt.Fprintf(w, "length:           %d\n", s.Len())
	fmt.Fprintf(w, "capacity:         %d\n", s.Cap())
	fmt.Fprintf(w, "growth increment: %d\n", s.GrowthIncrement())
	fmt.Fprintf(w, "embedded nul:     %d\n", nul)
	fmt.Fprintf(w, "escaped size:     %d\n", estr.CStringSize(int(s.Len()), nul, len(cfg.Escape())))
	if sp, ok := s.Allocator().(buffers.StatsProvider); ok {
		st := sp.Stats()
		fmt.Fprintf(w, "allocator:        %s allocs=%d reallocs=%d failures=%d live=%d\n",
			cfg.Allocator, st.Allocs, st.Reallocs, st.Failures, st.LiveBytes)
	}
	return nil
}
