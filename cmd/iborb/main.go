// Command iborb compiles CORBA IDL files into C++11 headers.
package main

import (
	"log/slog"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/uysalibov/ibORB/internal/config"
	"github.com/uysalibov/ibORB/internal/driver"
)

var (
	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "output directory for generated headers",
		Value: ".",
	}
	includeFlag = cli.StringSliceFlag{
		Name:  "include, I",
		Usage: "add an include search path",
	}
	defineFlag = cli.StringSliceFlag{
		Name:  "define, D",
		Usage: "define NAME[=VALUE] for the preprocessor",
	}
	noPreprocessFlag = cli.BoolFlag{
		Name:  "no-preprocess, E",
		Usage: "skip the C preprocessor and compile raw IDL",
	}
	parseOnlyFlag = cli.BoolFlag{
		Name:  "parse-only, p",
		Usage: "parse only, don't generate code",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "print each pipeline stage as it runs",
	}
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "load defaults from an iborb.yaml file",
	}
	doxygenFlag = cli.BoolFlag{
		Name:  "doxygen",
		Usage: "emit Doxygen comment blocks above generated types",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "iborb"
	app.Usage = "CORBA IDL to C++11 compiler"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		outputFlag, includeFlag, defineFlag, noPreprocessFlag,
		parseOnlyFlag, verboseFlag, configFlag, doxygenFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("iborb failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	paths := ctx.Args()
	if len(paths) == 0 {
		cli.ShowAppHelp(ctx)
		return cli.NewExitError("no input files specified", 1)
	}

	cfg := config.New()
	if cfgPath := ctx.String("config"); cfgPath != "" {
		if err := cfg.LoadFile(cfgPath); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}

	opts := driver.Options{
		OutputDir:    firstNonEmpty(ctx.String("output"), cfg.OutputDir, "."),
		Includes:     mergeStrings(ctx.StringSlice("include"), cfg.Includes),
		Defines:      mergeStrings(ctx.StringSlice("define"), cfg.Defines),
		NoPreprocess: ctx.Bool("no-preprocess") || cfg.NoPreprocess,
		ParseOnly:    ctx.Bool("parse-only"),
		Verbose:      ctx.Bool(verboseFlag.Name),
		WithDoxygen:  ctx.Bool(doxygenFlag.Name) || cfg.WithDoxygen,
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	failures := driver.Run(log, opts, paths)
	if failures > 0 {
		return cli.NewExitError("compilation failed", 1)
	}
	if opts.Verbose {
		log.Info("compilation succeeded", "files", len(paths))
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func mergeStrings(flagVals, cfgVals []string) []string {
	if len(flagVals) > 0 {
		return flagVals
	}
	return cfgVals
}
