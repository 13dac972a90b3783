// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

// Completion is the driver-facing view of a pending operation: a
// one-shot callback registration invoked exactly once on completion.
// The driver registers at most one callback per suspension.
type Completion interface {
	// OnComplete registers fn to run when the operation completes.
	// If the operation is already complete, fn runs immediately on
	// the calling stack.
	OnComplete(fn func())
}

// Awaiter is the capability obtained from an awaitable to drive one
// await: a non-blocking completed-check, non-blocking result retrieval
// (valid only once completed, returning the original failure), and the
// Completion registration used to resume after an asynchronous wait.
type Awaiter[T any] interface {
	Completion

	// Done reports whether the operation has completed. Never blocks.
	Done() bool

	// Result returns the completed value or the original failure.
	// Valid only once Done reports true; calling it earlier is a
	// defect and panics.
	Result() (T, error)
}

// Awaitable is anything a task can await: the structural capability of
// exposing an Awaiter. *Future implements it; user types implement it
// to make their own shapes awaitable without wrapping.
type Awaitable[T any] interface {
	Awaiter() Awaiter[T]
}

// Detachable is implemented by awaitables that can produce a view whose
// completion callbacks run inline on the completing goroutine, bypassing
// any resumer hop the source carries. BindDetached uses it; sources
// without a hop may return themselves.
type Detachable[T any] interface {
	Detach() Awaitable[T]
}

// Resumer schedules a resumption callback. A future created with
// NewPromiseOn routes its completion callbacks through its resumer,
// letting an embedding runtime pin resumptions to a particular
// goroutine or queue. A nil resumer means callbacks run inline on
// the completing goroutine.
type Resumer func(fn func())

// Yield returns an awaitable that is pending at first inspection and
// completes upon callback registration. Awaiting it forces exactly one
// suspension and then resumes immediately on the same stack, which
// makes it a deterministic yield point for tests and cooperative
// scheduling.
func Yield() Awaitable[struct{}] {
	return &yieldPoint{}
}

// yieldPoint is its own awaiter; it is single-threaded by construction
// (inspected and registered only by the one in-flight advance).
type yieldPoint struct {
	done bool
}

func (y *yieldPoint) Awaiter() Awaiter[struct{}] { return y }

func (y *yieldPoint) Done() bool { return y.done }

func (y *yieldPoint) Result() (struct{}, error) {
	if !y.done {
		panic(defect("task: Result of pending yield"))
	}
	return struct{}{}, nil
}

func (y *yieldPoint) OnComplete(fn func()) {
	y.done = true
	fn()
}
