// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "code.hybscloud.com/atomix"

// Driver states. Exactly one advance is in flight at a time: the next
// advance is triggered strictly by the previously registered completion
// callback, so the machine and current label are touched by one logical
// thread of control.
const (
	driverNotStarted uint32 = iota
	driverRunning
	driverSuspended
	driverFulfilled
	driverRejected
)

// driver owns the label table, the current resume label, and the
// output promise of one suspended task.
type driver[T any] struct {
	m       *Machine
	label   Label
	first   *Step[T]
	promise Promise[T]
	state   atomix.Uint32
}

// Run evaluates body once, synchronously, and turns the resulting step
// graph into a future.
//
// Fast paths: a Return yields an already-fulfilled future with no
// driver machinery allocated and zero callback registrations; a
// top-level ReturnFrom returns the handed-off future itself, not a
// wrapper. Only an Await allocates a driver.
//
// Run never panics with a task failure: if constructing the first step
// raises before any step exists, the returned future is already
// rejected with that failure.
func Run[T any](body func(*Machine) Step[T]) *Future[T] {
	m := NewMachine()
	step, err := attempt(func() Step[T] { return body(m) })
	if err != nil {
		return Rejected[T](err)
	}
	switch step.kind {
	case StepReturn:
		return Resolved(step.value)
	case StepReturnFrom:
		return step.future
	}
	d := &driver[T]{m: m, label: step.label, first: &step}
	d.advance()
	return d.promise.Future()
}

// advance performs one unit of progress: re-enter at the current label
// (reusing the precomputed first step on the first advance), then
// settle, hand off, or suspend. Synchronous-completion chains recurse
// on the call stack, never concurrently.
func (d *driver[T]) advance() {
	if prev := d.state.Swap(driverRunning); prev == driverRunning {
		panic(defect("task: concurrent advance"))
	}
	var step Step[T]
	if d.first != nil {
		step = *d.first
		d.first = nil
	} else {
		s, err := attempt(func() Step[T] { return Jump[T](d.m, d.label) })
		if err != nil {
			d.state.Store(driverRejected)
			d.promise.Fail(err)
			return
		}
		step = s
	}
	switch step.kind {
	case StepReturn:
		d.state.Store(driverFulfilled)
		d.promise.Complete(step.value)
	case StepReturnFrom:
		d.adopt(step.future)
	default:
		d.label = step.label
		// publish Suspended before registering: the callback may fire
		// synchronously and re-enter advance on this stack.
		d.state.Store(driverSuspended)
		step.pending.OnComplete(d.advance)
	}
}

// adopt binds the output promise to the eventual outcome of f.
func (d *driver[T]) adopt(f *Future[T]) {
	aw := f.Awaiter()
	if aw.Done() {
		d.settleFrom(aw)
		return
	}
	d.state.Store(driverSuspended)
	aw.OnComplete(func() { d.settleFrom(aw) })
}

func (d *driver[T]) settleFrom(aw Awaiter[T]) {
	v, err := aw.Result()
	if err != nil {
		d.state.Store(driverRejected)
		d.promise.Fail(err)
		return
	}
	d.state.Store(driverFulfilled)
	d.promise.Complete(v)
}
