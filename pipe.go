// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"io"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// defaultPipeCapacity is used when NewPipe is given a non-positive
// capacity. 4 balances amortizing producer-side cached-index refresh
// cost while keeping ring buffers within a single cache line.
const defaultPipeCapacity = 4

// Pipe bridges a producer goroutine into task computations: a bounded
// single-producer single-consumer queue whose consumer side is
// awaitable. The producer uses TrySend and Close; the consumer drives
// Recv inside a task, or polls TryRecv and awaits Ready by hand.
//
// Transport is a lock-free bounded SPSC queue from lfq; the producer
// and the consumer must each be a single goroutine.
type Pipe[T any] struct {
	q      lfq.SPSC[T]
	waiter atomic.Pointer[Promise[struct{}]]
	closed atomix.Uint32

	// consumer-side early-dequeue slot: Ready may have to consume the
	// element that raced its parking, and hands it to the next TryRecv.
	stash   T
	stashed bool
}

// NewPipe creates a pipe with the given buffer capacity.
// Non-positive capacities fall back to a small default.
func NewPipe[T any](capacity int) *Pipe[T] {
	if capacity <= 0 {
		capacity = defaultPipeCapacity
	}
	p := &Pipe[T]{}
	p.q.Init(capacity)
	return p
}

// TrySend enqueues v without blocking. Returns iox.ErrWouldBlock when
// the buffer is full and io.ErrClosedPipe after Close.
func (p *Pipe[T]) TrySend(v T) error {
	if p.closed.Load() > 0 {
		return io.ErrClosedPipe
	}
	if err := p.q.Enqueue(&v); err != nil {
		return err
	}
	p.wake()
	return nil
}

// Close marks the producer side finished. Buffered elements remain
// receivable; a drained closed pipe reports io.EOF.
func (p *Pipe[T]) Close() error {
	p.closed.Add(1)
	p.wake()
	return nil
}

// wake hands the parked readiness promise, if any, to the producer
// side and settles it. TryComplete tolerates the consumer settling the
// same promise concurrently from its re-check.
func (p *Pipe[T]) wake() {
	if w := p.waiter.Swap(nil); w != nil {
		w.TryComplete(struct{}{})
	}
}

// TryRecv dequeues without blocking. Returns iox.ErrWouldBlock when no
// element is available yet, io.EOF once the pipe is closed and drained.
func (p *Pipe[T]) TryRecv() (T, error) {
	if p.stashed {
		p.stashed = false
		return p.stash, nil
	}
	v, err := p.q.Dequeue()
	if err != nil {
		if p.closed.Load() > 0 {
			var zero T
			return zero, io.EOF
		}
		var zero T
		return zero, err
	}
	return v, nil
}

// Ready returns a future settling when the pipe has an element to
// receive or has been closed. Wakeups may be spurious; re-check with
// TryRecv. Call only from the consumer after TryRecv would block.
func (p *Pipe[T]) Ready() *Future[struct{}] {
	pr := NewPromise[struct{}]()
	p.waiter.Store(pr)
	// re-check: an element enqueued before the producer could observe
	// the parked waiter must not strand it.
	if v, err := p.q.Dequeue(); err == nil {
		p.stash, p.stashed = v, true
		p.waiter.CompareAndSwap(pr, nil)
		pr.TryComplete(struct{}{})
	} else if p.closed.Load() > 0 {
		p.waiter.CompareAndSwap(pr, nil)
		pr.TryComplete(struct{}{})
	}
	return pr.Future()
}

// Recv is the awaiting receive combinator: it completes with the next
// element, suspending the task while the pipe is empty. On a closed
// and drained pipe it raises io.EOF, which an enclosing TryWith
// catches like any other failure.
func (p *Pipe[T]) Recv(m *Machine) Step[T] {
	var out T
	pending := true
	loop := While(m, func() bool {
		v, err := p.TryRecv()
		if err == nil {
			out, pending = v, false
			return false
		}
		if err == io.EOF {
			raise(io.EOF)
		}
		return true
	}, func() Step[struct{}] {
		return Bind(m, p.Ready(), func(struct{}) Step[struct{}] {
			return Zero()
		})
	})
	return Combine(m, loop, func() Step[T] {
		if pending {
			panic(defect("task: pipe receive finished without element"))
		}
		return Return(out)
	})
}
