// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"io"
	"reflect"
)

// Exception-safe protection combinators. Each instance protects one
// body with one handler or one compensation; multi-clause matching is
// a front-end concern.

// TryWith runs body, routing failures to catch.
//
// The entry label wraps each re-entry of the body in a synchronous
// trap. Three outcomes of one attempt:
//
//   - Return propagates unchanged.
//   - ReturnFrom awaits the handed-off future; a failure surfacing at
//     result retrieval is routed to catch, so an awaited failure is
//     caught identically to a synchronous raise.
//   - Await re-arms: the body's resume point becomes the new inner
//     entry and the suspension resumes back at the entry label, so a
//     failure raised on a later resumed path still reaches catch.
//
// catch itself runs unprotected; failures it raises propagate outward.
func TryWith[T any](m *Machine, body func() Step[T], catch func(error) Step[T]) Step[T] {
	inner := Code(m, body)
	entry := m.Alloc()
	SetCode(m, entry, func() Step[T] {
		step, err := attempt(func() Step[T] { return Jump[T](m, inner) })
		if err != nil {
			return catch(err)
		}
		switch step.kind {
		case StepReturn:
			return step
		case StepReturnFrom:
			aw := step.future.Awaiter()
			if aw.Done() {
				return settleCatch(aw, catch)
			}
			l := Code(m, func() Step[T] { return settleCatch(aw, catch) })
			return awaiting[T](aw, l)
		default:
			inner = step.label
			return awaiting[T](step.pending, entry)
		}
	})
	return Jump[T](m, entry)
}

func settleCatch[T any](aw Awaiter[T], catch func(error) Step[T]) Step[T] {
	v, err := aw.Result()
	if err != nil {
		return catch(err)
	}
	return Return(v)
}

// TryFinally runs body with a compensation that runs exactly once on
// every terminal path: before a Return propagates, after an awaited
// hand-off settles (success or failure, always before any re-raise),
// and before a synchronous or resumed failure propagates. It is
// deferred — not run — while the body is merely mid-suspend. A failure
// raised by comp itself propagates; comp still ran exactly once.
func TryFinally[T any](m *Machine, body func() Step[T], comp func()) Step[T] {
	inner := Code(m, body)
	entry := m.Alloc()
	SetCode(m, entry, func() Step[T] {
		step, err := attempt(func() Step[T] { return Jump[T](m, inner) })
		if err != nil {
			comp()
			raise(err)
		}
		switch step.kind {
		case StepReturn:
			comp()
			return step
		case StepReturnFrom:
			aw := step.future.Awaiter()
			if aw.Done() {
				return settleComp(aw, comp)
			}
			l := Code(m, func() Step[T] { return settleComp(aw, comp) })
			return awaiting[T](aw, l)
		default:
			inner = step.label
			return awaiting[T](step.pending, entry)
		}
	})
	return Jump[T](m, entry)
}

// settleComp retrieves the awaited result, running the compensation
// before the failure, if any, re-raises.
func settleComp[T any](aw Awaiter[T], comp func()) Step[T] {
	v, err := aw.Result()
	comp()
	if err != nil {
		raise(err)
	}
	return Return(v)
}

// Using runs body with res, releasing it exactly once after the body's
// terminal step on every path. A nil resource is the empty sentinel:
// the body still runs, no release is attempted. A release failure
// propagates as a task failure.
func Using[R io.Closer, T any](m *Machine, res R, body func(R) Step[T]) Step[T] {
	return TryFinally(m, func() Step[T] { return body(res) }, func() {
		if isNilResource(res) {
			return
		}
		if err := res.Close(); err != nil {
			raise(err)
		}
	})
}

// isNilResource reports whether c is the empty sentinel: a nil
// interface, or a nil pointer boxed into the io.Closer interface.
func isNilResource(c io.Closer) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
