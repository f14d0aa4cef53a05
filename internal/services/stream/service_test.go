package stream_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/fstree/internal/services/stream"
	"github.com/temirov/fstree/internal/walker"
)

type recordingHandler struct {
	names   []string
	flushed bool
}

func (handler *recordingHandler) Handle(event walker.Event) error {
	handler.names = append(handler.names, event.Entry.Name)
	return nil
}

func (handler *recordingHandler) Flush() error {
	handler.flushed = true
	return nil
}

func createTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	for _, filePath := range []string{filepath.Join(nested, "example.txt"), filepath.Join(root, "top.txt")} {
		if err := os.WriteFile(filePath, []byte("tree"), 0o600); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	return root
}

func TestRunDeliversEventsInOrderAndFlushes(t *testing.T) {
	root := createTree(t)
	handler := &recordingHandler{}

	if err := stream.Run(context.Background(), walker.DefaultOptions(root), handler); err != nil {
		t.Fatalf("run: %v", err)
	}

	expected := []string{"nested", "example.txt", "top.txt"}
	if len(handler.names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, handler.names)
	}
	for index := range expected {
		if handler.names[index] != expected[index] {
			t.Fatalf("event %d: expected %s, got %s", index, expected[index], handler.names[index])
		}
	}
	if !handler.flushed {
		t.Fatalf("expected handler to be flushed")
	}
}

func TestDispatchStopsOnConsumerError(t *testing.T) {
	root := createTree(t)
	consumerFailure := errors.New("consumer failed")
	consumed := 0

	err := stream.Dispatch(context.Background(), stream.WalkProducer(walker.DefaultOptions(root)), func(walker.Event) error {
		consumed++
		return consumerFailure
	})
	if !errors.Is(err, consumerFailure) {
		t.Fatalf("expected consumer error, got %v", err)
	}
	if consumed != 1 {
		t.Fatalf("expected a single consumed event, got %d", consumed)
	}
}

func TestDispatchReportsInvalidOptions(t *testing.T) {
	err := stream.Dispatch(context.Background(), stream.WalkProducer(walker.Options{Root: "relative"}), func(walker.Event) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expected an error for a relative root")
	}
}

func TestProduceRequiresChannel(t *testing.T) {
	if err := stream.Produce(context.Background(), walker.DefaultOptions(t.TempDir()), nil); err == nil {
		t.Fatalf("expected an error for a nil channel")
	}
}

func TestDispatchIgnoresCallerCancellation(t *testing.T) {
	root := createTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := stream.Dispatch(ctx, stream.WalkProducer(walker.DefaultOptions(root)), func(walker.Event) error {
		return nil
	})
	if err != nil {
		t.Fatalf("expected cancellation to be swallowed, got %v", err)
	}
}
