// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

// Bind awaits src and passes its value to k.
//
// If src has already completed, k runs synchronously on the calling
// stack with no suspension (the fast path — no label is allocated and
// no callback registered). Otherwise Bind allocates a resume label
// that retrieves the result and invokes k, and returns an Await step.
//
// A failed await raises on retrieval, so an enclosing TryWith catches
// it identically to a synchronous raise. Long chains of synchronously
// completed awaits run nested on the calling stack; there is no
// trampolining here.
func Bind[A, B any](m *Machine, src Awaitable[A], k func(A) Step[B]) Step[B] {
	aw := src.Awaiter()
	if aw.Done() {
		return k(retrieve(aw))
	}
	l := Code(m, func() Step[B] {
		return k(retrieve(aw))
	})
	return awaiting[B](aw, l)
}

// BindDetached is Bind on a resumption-detached view of src: when src
// implements Detachable, its completion callback runs inline on the
// completing goroutine instead of hopping through the source's resumer.
// Use it when the continuation has no affinity to the origin context.
func BindDetached[A, B any](m *Machine, src Awaitable[A], k func(A) Step[B]) Step[B] {
	if d, ok := src.(Detachable[A]); ok {
		src = d.Detach()
	}
	return Bind(m, src, k)
}
