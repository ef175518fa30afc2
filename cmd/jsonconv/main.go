package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/broady/jsonconv/cmd/jsonconv/internal/check"
	"github.com/broady/jsonconv/cmd/jsonconv/internal/gen"
	"github.com/broady/jsonconv/cmd/jsonconv/internal/options"
)

type CLI struct {
	options.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate JSON parse and serialize routines."`
	Check   check.Cmd  `cmd:"" help:"Report generated files that are missing or out of date."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("jsonconv"),
		kong.Description("Generate reflection-free JSON parse and serialize routines for Go types."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
