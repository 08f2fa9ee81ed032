package main

import (
	"context"
	"errors"
	"github.com/saylorsolutions/superbus/assert"
	"github.com/saylorsolutions/superbus/cli"
	"github.com/saylorsolutions/superbus/signalx"
	"golang.org/x/term"
	"os"
	"time"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx := signalx.SignalExitCtx(context.Background(), os.Interrupt)
	a := newApp(os.Stdin, os.Stderr, term.IsTerminal(int(os.Stdin.Fd())))
	commands := a.commands()
	commands.BeforeExec(a.setup)
	if commands.RespondUsage(os.Args[1:], "Runs and inspects in-process event dispatch.\n\n%s", envUsage()) {
		return
	}
	err := commands.Exec(ctx, os.Args[1:])
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = assert.CollectErrors().Add(err).Add(a.close(closeCtx)).Result()
	if err != nil {
		commands.Printer().Println(err)
		var usage *cli.UsageError
		if errors.As(err, &usage) {
			commands.Printer().Println(usage.Hint())
		}
		cancel()
		os.Exit(1)
	}
}
