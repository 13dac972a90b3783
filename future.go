// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Future states. A future moves pending → committing → fulfilled or
// rejected, at most once. committing is the settlement window: the
// state word is claimed but the result is not yet published.
const (
	statePending uint32 = iota
	stateCommitting
	stateFulfilled
	stateRejected
)

// Future is a handle to a value or failure not yet necessarily known.
// It supports non-blocking inspection (Done, TryResult), blocking
// retrieval (Wait, Get), and one-shot completion callbacks.
//
// The settlement is stored as kont.Either: Left is the failure,
// Right the value.
//
// Future implements Awaitable and Awaiter for itself, so it can be
// awaited directly with Bind and handed off with ReturnFrom.
type Future[T any] struct {
	state atomix.Uint32
	res   kont.Either[error, T]

	// mu guards cbs before settlement. Settlement is lock-free; the
	// callback list is multi-producer and cannot ride an SPSC queue.
	mu  sync.Mutex
	cbs []func()

	resumer Resumer
}

// Promise is the producer side of a Future. It settles the future at
// most once: Complete and Fail panic on reuse, the Try variants report
// it instead.
type Promise[T any] struct {
	f Future[T]
}

// NewPromise creates an unsettled promise. Completion callbacks of its
// future run inline on the settling goroutine.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// NewPromiseOn creates an unsettled promise whose future routes
// completion callbacks through r. Detach on the future bypasses r.
func NewPromiseOn[T any](r Resumer) *Promise[T] {
	p := &Promise[T]{}
	p.f.resumer = r
	return p
}

// Future returns the consumer handle of this promise.
func (p *Promise[T]) Future() *Future[T] {
	return &p.f
}

// Complete settles the future with v. Panics if already settled.
func (p *Promise[T]) Complete(v T) {
	if !p.TryComplete(v) {
		panic(defect("task: promise settled twice"))
	}
}

// Fail settles the future with err. Panics if already settled.
func (p *Promise[T]) Fail(err error) {
	if !p.TryFail(err) {
		panic(defect("task: promise settled twice"))
	}
}

// TryComplete settles the future with v.
// Reports false if the future was already settled or being settled.
func (p *Promise[T]) TryComplete(v T) bool {
	return p.f.settle(kont.Right[error](v), stateFulfilled)
}

// TryFail settles the future with err.
// Reports false if the future was already settled or being settled.
func (p *Promise[T]) TryFail(err error) bool {
	return p.f.settle(kont.Left[error, T](err), stateRejected)
}

// Resolved creates an already-fulfilled future holding v.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{res: kont.Right[error](v)}
	f.state.Store(stateFulfilled)
	return f
}

// Rejected creates an already-rejected future holding err.
func Rejected[T any](err error) *Future[T] {
	f := &Future[T]{res: kont.Left[error, T](err)}
	f.state.Store(stateRejected)
	return f
}

// settle claims the state word, publishes the result, then drains the
// callback list. Exactly one settle wins; callbacks registered after
// the final state is published run inline on the registering goroutine.
func (f *Future[T]) settle(res kont.Either[error, T], final uint32) bool {
	if !f.state.CompareAndSwap(statePending, stateCommitting) {
		return false
	}
	f.res = res
	f.state.Store(final)

	f.mu.Lock()
	cbs := f.cbs
	f.cbs = nil
	f.mu.Unlock()
	for _, fn := range cbs {
		fn()
	}
	return true
}

// Done reports whether the future has settled. Never blocks.
func (f *Future[T]) Done() bool {
	return f.state.Load() >= stateFulfilled
}

// Result returns the settled value or the original failure.
// Valid only once Done reports true; calling it earlier is a defect.
func (f *Future[T]) Result() (T, error) {
	if !f.Done() {
		panic(defect("task: Result of pending future"))
	}
	if v, ok := f.res.GetRight(); ok {
		return v, nil
	}
	err, _ := f.res.GetLeft()
	var zero T
	return zero, err
}

// TryResult is the non-blocking retrieval: it returns
// iox.ErrWouldBlock while the future is pending.
func (f *Future[T]) TryResult() (T, error) {
	if !f.Done() {
		var zero T
		return zero, iox.ErrWouldBlock
	}
	return f.Result()
}

// Outcome returns the settlement as an Either: Left failure, Right
// value. Valid only once Done reports true.
func (f *Future[T]) Outcome() kont.Either[error, T] {
	if !f.Done() {
		panic(defect("task: Outcome of pending future"))
	}
	return f.res
}

// Wait blocks until the future settles, spinning with adaptive backoff
// (iox.Backoff). No goroutines or channels are created.
func (f *Future[T]) Wait() {
	var bo iox.Backoff
	for !f.Done() {
		bo.Wait()
	}
}

// Get blocks until the future settles and returns its result.
func (f *Future[T]) Get() (T, error) {
	f.Wait()
	return f.Result()
}

// OnComplete registers fn to run exactly once when the future settles,
// through the resumer hop when one is set. If the future has already
// settled, fn runs immediately on the calling stack.
func (f *Future[T]) OnComplete(fn func()) {
	if f.resumer != nil {
		inner := fn
		hop := f.resumer
		fn = func() { hop(inner) }
	}
	f.subscribe(fn)
}

// subscribe appends fn pre-settlement or invokes it post-settlement.
func (f *Future[T]) subscribe(fn func()) {
	f.mu.Lock()
	if f.state.Load() < stateFulfilled {
		f.cbs = append(f.cbs, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn()
}

// Awaiter implements Awaitable. The future is its own awaiter; its
// callbacks honor the resumer hop, deferring to the future's own
// resumption affinity.
func (f *Future[T]) Awaiter() Awaiter[T] {
	return f
}

// Detach implements Detachable: the returned view registers completion
// callbacks inline on the settling goroutine, bypassing the resumer.
func (f *Future[T]) Detach() Awaitable[T] {
	if f.resumer == nil {
		return f
	}
	return detached[T]{f}
}

// detached is a resumer-bypassing view of a future.
type detached[T any] struct {
	f *Future[T]
}

func (d detached[T]) Awaiter() Awaiter[T] { return rawAwaiter[T]{d.f} }

// rawAwaiter registers callbacks without the resumer hop.
type rawAwaiter[T any] struct {
	f *Future[T]
}

func (a rawAwaiter[T]) Done() bool         { return a.f.Done() }
func (a rawAwaiter[T]) Result() (T, error) { return a.f.Result() }
func (a rawAwaiter[T]) OnComplete(fn func()) {
	a.f.subscribe(fn)
}
