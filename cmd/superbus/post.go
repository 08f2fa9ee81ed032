package main

import (
	"context"
	"github.com/saylorsolutions/superbus/cli"
	"github.com/saylorsolutions/superbus/contextx"
	"github.com/saylorsolutions/superbus/eventbus"
	"github.com/saylorsolutions/superbus/eventbus/subscribe"
	flag "github.com/spf13/pflag"
	"strconv"
	"strings"
)

// echo prints everything delivered to it, and is registered by method name.
// Booleans have no handler, so they show up as dead events.
type echo struct {
	out *cli.Printer
}

func (e *echo) OnString(event string) error {
	e.out.Printf("string: %s\n", event)
	return nil
}

func (e *echo) OnInt(event int) error {
	e.out.Printf("int: %d\n", event)
	return nil
}

func (e *echo) OnFloat(event float64) error {
	e.out.Printf("float: %g\n", event)
	return nil
}

func (e *echo) OnDead(event eventbus.DeadEvent) error {
	e.out.Printf("dead: %T %v\n", event.Event(), event.Event())
	return nil
}

// parseLine converts input into the most specific value it can represent.
func parseLine(line string) any {
	if i, err := strconv.Atoi(line); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(line, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(line); err == nil {
		return b
	}
	return line
}

func (a *app) runPost(ctx context.Context, flags *flag.FlagSet, out *cli.Printer) error {
	bus, err := a.newBus()
	if err != nil {
		return err
	}
	if err := subscribe.Register(bus, &echo{out: out}); err != nil {
		return err
	}
	prompt := cli.Get(flags, (*flag.FlagSet).GetString, "prompt")
	showPrompt := func() {
		if a.interactive {
			out.Print(prompt)
		}
	}

	lines, scanErr := contextx.Lines(ctx, a.stdin)
	showPrompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return scanErr()
			}
			if line = strings.TrimSpace(line); len(line) > 0 {
				if err := bus.Post(parseLine(line)); err != nil {
					return err
				}
			}
			showPrompt()
		}
	}
}
