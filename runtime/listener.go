package runtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/odvcencio/screenrun/backend"
)

const defaultMessageBuffer = 128

// Listener reads input events on its own goroutine and hands them to a
// single consumer over a bounded channel.
//
// Stop is a request, not a join: the worker notices it within one poll
// interval, or immediately if it is blocked handing over an event. Use
// Done to wait for the worker to exit.
type Listener struct {
	events chan backend.Event
	stop   chan struct{}
	gone   chan struct{}
	done   chan struct{}
	quit   atomic.Bool
	err    error

	stopOnce  sync.Once
	closeOnce sync.Once
}

// Listen starts a listener over src. Each wait for input lasts at most poll,
// which also bounds how long Stop takes to be observed.
func Listen(src backend.EventSource, poll time.Duration, buffer int) *Listener {
	if buffer <= 0 {
		buffer = defaultMessageBuffer
	}
	l := &Listener{
		events: make(chan backend.Event, buffer),
		stop:   make(chan struct{}),
		gone:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.run(src, poll)
	return l
}

// Events returns the channel events are delivered on. It is closed when
// the worker exits for any reason.
func (l *Listener) Events() <-chan backend.Event {
	return l.events
}

// Stop asks the worker to exit without waiting for it.
func (l *Listener) Stop() {
	l.quit.Store(true)
	l.stopOnce.Do(func() { close(l.stop) })
}

// Close tells the worker the consumer is gone. The worker exits with
// ErrReceiverGone within one poll interval.
func (l *Listener) Close() {
	l.closeOnce.Do(func() { close(l.gone) })
}

// Done is closed once the worker has exited.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Err returns the worker's completion error. It is nil while the worker is
// running and after a requested stop.
func (l *Listener) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

func (l *Listener) run(src backend.EventSource, poll time.Duration) {
	defer close(l.done)
	defer close(l.events)
	l.err = l.loop(src, poll)
}

func (l *Listener) loop(src backend.EventSource, poll time.Duration) error {
	for {
		if l.quit.Load() {
			return nil
		}
		if l.receiverGone() {
			return ErrReceiverGone
		}
		ready, err := src.PollEvent(poll)
		if err != nil {
			return &ListenError{Op: "poll", Err: err}
		}
		if !ready {
			continue
		}
		ev, err := src.ReadEvent()
		if err != nil {
			return &ListenError{Op: "read", Err: err}
		}
		if key, ok := ev.(backend.KeyEvent); ok && key.Kind != backend.KeyPress {
			continue
		}
		if l.receiverGone() {
			return ErrReceiverGone
		}
		select {
		case l.events <- ev:
		case <-l.gone:
			return ErrReceiverGone
		case <-l.stop:
			return nil
		}
	}
}

func (l *Listener) receiverGone() bool {
	select {
	case <-l.gone:
		return true
	default:
		return false
	}
}
