package main

import (
	"context"
	"fmt"
	"github.com/saylorsolutions/superbus/cli"
	"github.com/saylorsolutions/superbus/contextx"
	"github.com/saylorsolutions/superbus/eventbus"
	"github.com/saylorsolutions/superbus/syncx"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"reflect"
	"sync/atomic"
	"time"
)

type benchConfig struct {
	types     int
	handlers  int
	posts     int
	producers int
}

type benchResult struct {
	events      int
	invocations int64
	elapsed     time.Duration
}

func (r benchResult) String() string {
	rate := float64(r.events) / max(r.elapsed.Seconds(), time.Nanosecond.Seconds())
	return fmt.Sprintf("posted %d events, %d handler invocations in %s (%.0f events/s)", r.events, r.invocations, r.elapsed.Round(time.Microsecond), rate)
}

// benchDescriptor accepts exactly one dynamically created event type.
type benchDescriptor struct {
	typ      reflect.Type
	priority int
	count    *atomic.Int64
}

func (d *benchDescriptor) Matches(event any) bool {
	return reflect.TypeOf(event) == d.typ
}

func (d *benchDescriptor) Invoke(_, _ any) error {
	d.count.Add(1)
	return nil
}

func (d *benchDescriptor) Priority() int {
	return d.priority
}

// benchTypes creates n distinct struct types, so each one gets its own cache entry in the bus.
func benchTypes(n int) []reflect.Type {
	types := make([]reflect.Type, n)
	for i := range types {
		types[i] = reflect.StructOf([]reflect.StructField{{
			Name: "Seq",
			Type: reflect.TypeFor[int](),
			Tag:  reflect.StructTag(fmt.Sprintf(`bench:"%d"`, i)),
		}})
	}
	return types
}

func benchEvent(typ reflect.Type, seq int) any {
	val := reflect.New(typ).Elem()
	val.Field(0).SetInt(int64(seq))
	return val.Interface()
}

func (a *app) runBench(ctx context.Context, flags *flag.FlagSet, out *cli.Printer) error {
	conf := benchConfig{
		types:     cli.Get(flags, (*flag.FlagSet).GetInt, "types"),
		handlers:  cli.Get(flags, (*flag.FlagSet).GetInt, "handlers"),
		posts:     cli.Get(flags, (*flag.FlagSet).GetInt, "posts"),
		producers: cli.Get(flags, (*flag.FlagSet).GetInt, "producers"),
	}
	result, err := a.bench(ctx, conf)
	if err != nil {
		return err
	}
	out.Println(result)
	return nil
}

func (a *app) bench(ctx context.Context, conf benchConfig) (benchResult, error) {
	if conf.types < 1 || conf.handlers < 1 || conf.posts < 1 || conf.producers < 1 {
		return benchResult{}, cli.NewUsageError("types, handlers, posts, and producers must all be at least 1")
	}
	bus, err := a.newBus()
	if err != nil {
		return benchResult{}, err
	}
	types := benchTypes(conf.types)
	var count atomic.Int64
	for h := range conf.handlers {
		descriptors := make([]eventbus.Descriptor, len(types))
		for i, typ := range types {
			descriptors[i] = &benchDescriptor{typ: typ, priority: h % 3, count: &count}
		}
		if err := bus.Register(new(int), descriptors...); err != nil {
			return benchResult{}, err
		}
	}

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	loop, err := eventbus.NewLoop(loopCtx, bus)
	if err != nil {
		return benchResult{}, err
	}
	a.logger.Info("Starting benchmark", "types", conf.types, "handlers", conf.handlers, "posts", conf.posts, "producers", conf.producers)

	start := time.Now()
	group, groupCtx := errgroup.WithContext(ctx)
	for p := range conf.producers {
		group.Go(func() error {
			results := make([]syncx.Future[error], 0, conf.posts)
			for i := range conf.posts {
				if contextx.IsDone(groupCtx) {
					return groupCtx.Err()
				}
				results = append(results, loop.Post(benchEvent(types[(p+i)%len(types)], i)))
			}
			for _, result := range results {
				postErr, err := result.AwaitContext(groupCtx)
				if err != nil {
					return err
				}
				if postErr != nil {
					return postErr
				}
			}
			return nil
		})
	}
	err = group.Wait()
	elapsed := time.Since(start)
	if stopErr := loop.AwaitStop(shutdownTimeout); err == nil {
		err = stopErr
	}
	if err != nil {
		return benchResult{}, err
	}
	result := benchResult{
		events:      conf.posts * conf.producers,
		invocations: count.Load(),
		elapsed:     elapsed,
	}
	a.logger.Info("Finished benchmark", "events", result.events, "invocations", result.invocations, "elapsed", elapsed)
	return result, nil
}
