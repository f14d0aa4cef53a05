// Package stream moves traversal events from a walker to a renderer over a channel.
package stream

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/fstree/internal/walker"
)

const (
	errorNilChannel    = "stream: event channel is nil"
	errorProduceFormat = "stream: walking %s: %w"
)

// Producer writes events to out until the traversal ends or ctx is cancelled.
type Producer func(ctx context.Context, out chan<- walker.Event) error

// Consumer handles one event at a time, in traversal order.
type Consumer func(event walker.Event) error

// Handler receives events and completes the output once the stream is drained.
type Handler interface {
	Handle(event walker.Event) error
	Flush() error
}

// Produce walks the tree described by options and sends every event to out.
func Produce(ctx context.Context, options walker.Options, out chan<- walker.Event) error {
	if out == nil {
		return errors.New(errorNilChannel)
	}
	treeWalker, walkerError := walker.New(options)
	if walkerError != nil {
		return fmt.Errorf(errorProduceFormat, options.Root, walkerError)
	}
	for event := range treeWalker.Events() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- event:
		}
	}
	return nil
}

// WalkProducer binds options to Produce.
func WalkProducer(options walker.Options) Producer {
	return func(ctx context.Context, out chan<- walker.Event) error {
		return Produce(ctx, options, out)
	}
}

// Dispatch runs produce and consume concurrently, connected by an unbuffered channel.
// The first error from either side cancels the other. Cancellation of ctx itself is
// not reported as an error.
func Dispatch(ctx context.Context, produce Producer, consume Consumer) error {
	group, streamContext := errgroup.WithContext(ctx)
	events := make(chan walker.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamContext, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamContext.Done():
				return streamContext.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if consumeError := consume(event); consumeError != nil {
					return consumeError
				}
			}
		}
	})

	if waitError := group.Wait(); waitError != nil && !errors.Is(waitError, context.Canceled) {
		return waitError
	}
	return nil
}

// Run streams a walk into handler and flushes it once every event has been handled.
func Run(ctx context.Context, options walker.Options, handler Handler) error {
	if dispatchError := Dispatch(ctx, WalkProducer(options), handler.Handle); dispatchError != nil {
		return dispatchError
	}
	return handler.Flush()
}
