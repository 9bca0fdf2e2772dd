package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ringsidehq/ringside/internal/adapters/docstore"
)

func change(id, roomID string) Event {
	return Event{
		Collection: docstore.CollectionEvaluations,
		Type:       docstore.ChangePut,
		ID:         id,
		RoomID:     roomID,
		At:         time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, change("ev-1", "room-1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	events := q.Dequeue(ctx)
	e := <-events
	if e.ID != "ev-1" || e.RoomID != "room-1" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestInMemoryQueue_Full(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, change("ev-1", "room-1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, change("ev-2", "room-1")) {
		t.Error("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, change("ev-3", "room-1")) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if !q.Enqueue(ctx, change("ev-1", "room-1")) {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, change("ev-2", "room-1")) {
		t.Error("expected enqueue to fail after close")
	}
	// Closing twice reports the sentinel.
	if err := q.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second close: got %v, want ErrClosed", err)
	}

	// Buffered events drain, then the channel closes.
	events := q.Dequeue(ctx)
	if e, ok := <-events; !ok || e.ID != "ev-1" {
		t.Errorf("expected buffered event, got %+v ok=%v", e, ok)
	}
	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected channel to close after drain")
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for channel close")
	}
}

func TestInMemoryQueue_DequeueCancellation(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())

	events := q.Dequeue(ctx)
	cancel()
	q.Enqueue(context.Background(), change("ev-1", "room-1"))

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel after context cancel")
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for cancelled dequeue to close")
	}
}
