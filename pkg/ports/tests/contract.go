package tests

import (
	"context"
	"testing"
	"time"

	"github.com/apkaudio/openair/pkg/ports"
)

// BusContractTest is a reusable test suite that verifies an adapter
// complies with ports.Bus semantics: subscribe/publish round-trip,
// topic isolation, and cancel idempotency.
func BusContractTest(t *testing.T, bus ports.Bus) {
	t.Helper()
	ctx := context.Background()

	recv := func(ch <-chan []byte) []byte {
		t.Helper()
		select {
		case p := <-ch:
			return p
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
			return nil
		}
	}

	t.Run("RoundTrip", func(t *testing.T) {
		got := make(chan []byte, 1)
		cancel, err := bus.Subscribe(ctx, "contract/a", func(topic string, payload []byte) {
			got <- payload
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
		defer cancel()

		if err := bus.Publish(ctx, "contract/a", []byte(`{"val":1}`)); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if string(recv(got)) != `{"val":1}` {
			t.Error("payload mismatch")
		}
	})

	t.Run("TopicIsolation", func(t *testing.T) {
		got := make(chan []byte, 1)
		cancel, err := bus.Subscribe(ctx, "contract/b", func(topic string, payload []byte) {
			got <- payload
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
		defer cancel()

		if err := bus.Publish(ctx, "contract/other", []byte("x")); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if err := bus.Publish(ctx, "contract/b", []byte("y")); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		// Only the matching topic is delivered.
		if string(recv(got)) != "y" {
			t.Error("received message from foreign topic")
		}
	})

	t.Run("CancelIdempotent", func(t *testing.T) {
		cancel, err := bus.Subscribe(ctx, "contract/c", func(string, []byte) {})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
		cancel()
		cancel() // must not panic
	})
}
