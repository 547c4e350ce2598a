package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/xjws/cmd/jws-tool/cli"
	"github.com/effective-security/xjws/internal/version"
)

type app struct {
	cli.Cli

	Key     cli.KeyCmd     `cmd:"" help:"Key commands"`
	Sign    cli.SignCmd    `cmd:"" help:"Sign payload and print compact JWS"`
	Verify  cli.VerifyCmd  `cmd:"" help:"Validate compact JWS and print the payload"`
	Inspect cli.InspectCmd `cmd:"" help:"Print compact JWS header without validation"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("jws-tool"),
		kong.Description("JSON Web Signature tool"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG more print command line
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(args, " "))
		}
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
