package main

import (
	"fmt"
	"os"

	"estr-go/internal/fn"
	"estr-go/pkg/estr"

	"github.com/urfave/cli/v2"
)

var compareCommand = &cli.Command{
	Name:      "compare",
	Usage:     "Order two files as strings: shorter first, then by first differing byte",
	ArgsUsage: "FILE_A FILE_B",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "sign",
			Usage: "Print only -1, 0 or 1",
		},
	},
	Action: compareCmd,
}

func loadFile(c *cli.Context, name string) (*estr.Str, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loadStr(configFrom(c), f)
}

func compareCmd(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("Error: compare needs exactly two files.", 2)
	}
	a, err := loadFile(c, c.Args().Get(0))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading %s: %v", c.Args().Get(0), err), 1)
	}
	defer a.Destroy()
	b, err := loadFile(c, c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error reading %s: %v", c.Args().Get(1), err), 1)
	}
	defer b.Destroy()

	r := estr.Compare(a, b)
	if c.Bool("sign") {
		r = fn.Sign(r)
	}
	fmt.Fprintln(c.App.Writer, r)
	return nil
}
