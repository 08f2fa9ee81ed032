// Package contextx has helpers for commands that must keep responding to cancellation.
package contextx

import (
	"bufio"
	"context"
	"io"
)

// IsDone reports whether ctx is cancelled, without blocking.
// A nil ctx is never done.
func IsDone(ctx context.Context) bool {
	return ctx != nil && ctx.Err() != nil
}

// Lines scans r line by line on its own goroutine, so a read blocked on a terminal doesn't hide cancellation from the caller.
// The channel is closed once r is exhausted or ctx is done, after which the returned function reports why.
// Callers should select on ctx.Done alongside the channel, since a blocked read only notices ctx after it returns.
func Lines(ctx context.Context, r io.Reader) (<-chan string, func() error) {
	var (
		lines = make(chan string)
		done  = make(chan struct{})
		err   error
	)
	go func() {
		defer close(done)
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				err = ctx.Err()
				return
			}
		}
		err = scanner.Err()
	}()
	return lines, func() error {
		<-done
		return err
	}
}
