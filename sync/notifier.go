package sync

import "context"

// Adapted from the slides for "Rethinking Classical Concurrency Patterns" by Bryan C. Mills.

type state[T any] struct {
	seq     int64
	value   T
	changed chan struct{} // closed upon notify
}

// Notifier publishes successive values of T to any number of readers. Readers always
// see the latest value. A reader that is slow between calls to AwaitChange skips the
// values it missed and is woken with the newest one.
type Notifier[T any] struct {
	st chan state[T]
}

func NewNotifier[T any](initial T) *Notifier[T] {
	st := make(chan state[T], 1)
	st <- state[T]{
		seq:     0,
		value:   initial,
		changed: make(chan struct{}),
	}
	return &Notifier[T]{st: st}
}

func (n *Notifier[T]) NotifyChange(v T) {
	st := <-n.st
	close(st.changed)
	n.st <- state[T]{
		seq:     st.seq + 1,
		value:   v,
		changed: make(chan struct{}),
	}
}

func (n *Notifier[T]) LastChange() (T, int64) {
	st := <-n.st
	n.st <- st

	return st.value, st.seq
}

// AwaitChange blocks until a value newer than seq is published, or ctx is done. If seq
// is already out of date, it returns the current value immediately. ok is false if
// ctx ended first.
func (n *Notifier[T]) AwaitChange(ctx context.Context, seq int64) (v T, newSeq int64, ok bool) {
	st := <-n.st
	n.st <- st

	if st.seq != seq {
		return st.value, st.seq, true
	}

	select {
	case <-ctx.Done():
		return st.value, seq, false
	case <-st.changed:
	}

	v, newSeq = n.LastChange()
	return v, newSeq, true
}
