package sync

import (
	"context"
	"testing"
	"time"
)

func TestNotifierLastChange(t *testing.T) {
	n := NewNotifier("a")

	v, seq := n.LastChange()
	if v != "a" || seq != 0 {
		t.Fatalf("expected (a, 0), got (%s, %d)", v, seq)
	}

	n.NotifyChange("b")

	v, seq = n.LastChange()
	if v != "b" || seq != 1 {
		t.Fatalf("expected (b, 1), got (%s, %d)", v, seq)
	}
}

func TestNotifierAwaitStale(t *testing.T) {
	n := NewNotifier(0)
	n.NotifyChange(1)
	n.NotifyChange(2)

	v, seq, ok := n.AwaitChange(context.Background(), 0)
	if !ok || v != 2 || seq != 2 {
		t.Fatalf("expected (2, 2, true), got (%d, %d, %v)", v, seq, ok)
	}
}

func TestNotifierAwaitWakes(t *testing.T) {
	n := NewNotifier(0)

	done := make(chan int)
	go func() {
		v, _, _ := n.AwaitChange(context.Background(), 0)
		done <- v
	}()

	n.NotifyChange(7)

	select {
	case v := <-done:
		if v != 7 {
			t.Fatalf("expected 7, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("AwaitChange was not woken")
	}
}

func TestNotifierAwaitCancelled(t *testing.T) {
	n := NewNotifier(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, seq, ok := n.AwaitChange(ctx, 0)
	if ok || seq != 0 {
		t.Fatalf("expected (0, false), got (%d, %v)", seq, ok)
	}
}
