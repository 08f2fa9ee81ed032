package signalx

import (
	"context"
	"os"
	"os/signal"
)

var exit = os.Exit

// SignalExitCtx will set up a context that will be cancelled if any of the given signals are received.
// If a second signal is received, then [os.Exit] will be called with a non-zero exit code.
// Cancelling parent stops signal handling.
func SignalExitCtx(parent context.Context, signals ...os.Signal) context.Context {
	if len(signals) == 0 {
		panic("no signals passed to SignalExitCtx")
	}
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, signals...)
	go func() {
		defer cancel()
		select {
		case <-sigs:
		case <-parent.Done():
			signal.Stop(sigs)
			return
		}
		cancel()
		<-sigs
		exit(1)
	}()
	return ctx
}
