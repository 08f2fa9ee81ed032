package main

import (
	"context"
	"embed"
	"fmt"
	"github.com/saylorsolutions/superbus/assert"
	"github.com/saylorsolutions/superbus/cli"
	"github.com/saylorsolutions/superbus/scenario"
	flag "github.com/spf13/pflag"
	"io/fs"
	"path"
	"strings"
)

//go:embed demos
var demoFiles embed.FS

func envUsage() string {
	return fmt.Sprintf(`ENVIRONMENT:
  %-22s Log level (debug, info, warn, error), defaults to info
  %-22s Also write JSON logs to this file, at debug level
  %-22s Export metrics to STDERR when true
  %-22s Initial dispatch queue capacity`, envLogLevel, envLogFile, envMetrics, envQueueBuffer)
}

func (a *app) commands() *cli.CommandSet {
	set := cli.NewCommandSet("superbus")
	set.Printer().Redirect(a.stderr)

	set.AddCommand("run", "Runs a YAML or TOML scenario file and prints its trace", "r").
		Usage("run FILE...").
		Does(a.runScenarios)

	demo := set.AddCommand("demo", "Runs the built-in dispatch demonstrations", "d").
		Usage("demo [FLAGS] [NAME...]").
		Does(a.runDemos)
	demo.Flags().BoolP("list", "l", false, "Lists demo names instead of running them")

	bench := set.AddCommand("bench", "Measures dispatch through a loop with concurrent producers", "b").
		Usage("bench [FLAGS]").
		Does(a.runBench)
	bench.Flags().Int("types", 4, "Number of distinct event types")
	bench.Flags().Int("handlers", 8, "Number of handlers registered for each event type")
	bench.Flags().Int("posts", 10_000, "Number of events posted by each producer")
	bench.Flags().Int("producers", 4, "Number of concurrent producers")

	post := set.AddCommand("post", "Posts each line read from STDIN to a bus with printing handlers", "p").
		Usage("post [FLAGS]").
		Does(a.runPost)
	post.Flags().String("prompt", "> ", "Prompt shown when STDIN is a terminal")

	return set
}

func (a *app) runScenarios(ctx context.Context, flags *flag.FlagSet, out *cli.Printer) error {
	if flags.NArg() == 0 {
		return cli.NewUsageError("at least one scenario file is required")
	}
	errs := assert.CollectErrors()
	for i, file := range flags.Args() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s, err := scenario.Load(file)
		if err == nil {
			err = a.printTrace(s, out, i > 0)
		}
		if err != nil {
			a.logger.Error("Scenario failed", "file", file, "error", err)
			errs.Addf("scenario '%s': %w", file, err)
		}
	}
	if errs.Len() > 0 {
		return fmt.Errorf("%d of %d scenarios failed: %w", errs.Len(), flags.NArg(), errs)
	}
	return nil
}

func (a *app) runDemos(ctx context.Context, flags *flag.FlagSet, out *cli.Printer) error {
	names, err := demoNames()
	if err != nil {
		return err
	}
	if cli.Get(flags, (*flag.FlagSet).GetBool, "list") {
		for _, name := range names {
			out.Println(name)
		}
		return nil
	}
	if flags.NArg() > 0 {
		names = flags.Args()
	}
	for i, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		data, err := demoFiles.ReadFile(path.Join("demos", name+".yaml"))
		if err != nil {
			return cli.NewUsageError("unknown demo '%s'", name)
		}
		s, err := scenario.Parse(data, scenario.FormatYAML)
		if err != nil {
			return fmt.Errorf("demo '%s': %w", name, err)
		}
		if err := a.printTrace(s, out, i > 0); err != nil {
			return fmt.Errorf("demo '%s': %w", name, err)
		}
	}
	return nil
}

func demoNames() ([]string, error) {
	entries, err := fs.ReadDir(demoFiles, "demos")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (a *app) printTrace(s *scenario.Scenario, out *cli.Printer, separate bool) error {
	trace, err := scenario.Run(s, a.busOptions()...)
	if err != nil {
		return err
	}
	if separate {
		out.Println()
	}
	out.Print(trace.String())
	return nil
}
