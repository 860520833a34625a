package render

import (
	"errors"
	"sync"
)

// ErrManagerClosed is returned when an operation or a batch completion
// callback reaches a Manager whose control goroutine has stopped. With all
// calls routed through the control queue, delivery off the control
// goroutine is impossible by construction; delivery after shutdown is
// reported rather than executed.
var ErrManagerClosed = errors.New("render: manager closed")

// call is one unit of work queued onto the control goroutine.
type call struct {
	fn   func()
	done chan bool // true if the call executed, false if refused
}

// executor serialises all Manager state access onto one goroutine.
type executor struct {
	calls    chan call
	quit     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

func newExecutor() *executor {
	e := &executor{
		calls:    make(chan call),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.finished)
	for {
		select {
		case c := <-e.calls:
			c.fn()
			c.done <- true
		case <-e.quit:
			// Refuse anything still queued, then exit.
			for {
				select {
				case c := <-e.calls:
					c.done <- false
				default:
					return
				}
			}
		}
	}
}

// do runs fn on the control goroutine and waits for it to finish.
func (e *executor) do(fn func()) error {
	c := call{fn: fn, done: make(chan bool, 1)}
	select {
	case e.calls <- c:
	case <-e.finished:
		return ErrManagerClosed
	}
	if !<-c.done {
		return ErrManagerClosed
	}
	return nil
}

// stop shuts the control goroutine down and waits for it to exit. Queued
// calls are refused, not executed.
func (e *executor) stop() {
	e.stopOnce.Do(func() { close(e.quit) })
	<-e.finished
}
