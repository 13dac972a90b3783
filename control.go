// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"io"
	"iter"
)

// Combine sequences first before rest. The first step must be
// unit-typed, which rules out two terminal returns in sequence.
//
// When first already completed (Return), rest runs directly —
// Combine(Zero(), rest) is observationally equivalent to rest().
// Otherwise Combine builds an entry label that resolves the current
// state of first: a hand-off is awaited, and a suspension is re-wrapped
// with a resume label that recomputes first from its resume point and
// loops back to the entry, so first stays resumable across any number
// of suspensions.
func Combine[T any](m *Machine, first Step[struct{}], rest func() Step[T]) Step[T] {
	if first.kind == StepReturn {
		return rest()
	}
	cont := Code(m, rest)
	cur := first
	entry := m.Alloc()
	SetCode(m, entry, func() Step[T] {
		switch cur.kind {
		case StepReturn:
			return Jump[T](m, cont)
		case StepReturnFrom:
			aw := cur.future.Awaiter()
			if aw.Done() {
				retrieve(aw)
				return Jump[T](m, cont)
			}
			l := Code(m, func() Step[T] {
				retrieve(aw)
				return Jump[T](m, cont)
			})
			return awaiting[T](aw, l)
		default:
			resume := cur.label
			l := Code(m, func() Step[T] {
				cur = Jump[struct{}](m, resume)
				return Jump[T](m, entry)
			})
			return awaiting[T](cur.pending, l)
		}
	})
	return Jump[T](m, entry)
}

// While runs body as long as cond reports true. The body may suspend
// arbitrarily many times per iteration and across iterations; cond and
// body closures are captured once. cond runs synchronously between
// iterations on whichever stack the previous iteration finished on.
func While(m *Machine, cond func() bool, body func() Step[struct{}]) Step[struct{}] {
	entry := m.Alloc()
	SetCode(m, entry, func() Step[struct{}] {
		if !cond() {
			return Zero()
		}
		return Combine(m, body(), func() Step[struct{}] {
			return Jump[struct{}](m, entry)
		})
	})
	return Jump[struct{}](m, entry)
}

// Iterator is a single forward pass over a sequence: Next advances and
// reports whether an element is available, Value returns the current
// element. Iterators are not reset. An iterator that also implements
// io.Closer is closed by For when the loop terminates on any path.
type Iterator[E any] interface {
	Next() bool
	Value() E
}

// For drives body over it in source order, one element at a time, with
// no parallelism across elements. The body may suspend freely. The
// iterator is released exactly once when the loop finishes, fails, or
// unwinds, provided it implements io.Closer.
func For[E any](m *Machine, it Iterator[E], body func(E) Step[struct{}]) Step[struct{}] {
	return TryFinally(m, func() Step[struct{}] {
		return While(m, it.Next, func() Step[struct{}] {
			return body(it.Value())
		})
	}, func() {
		if c, ok := it.(io.Closer); ok {
			if err := c.Close(); err != nil {
				raise(err)
			}
		}
	})
}

// FromSeq adapts a range-over-func sequence into an Iterator.
// The returned iterator implements io.Closer by stopping the pull,
// so For releases the sequence even when the loop body fails.
func FromSeq[E any](seq iter.Seq[E]) Iterator[E] {
	next, stop := iter.Pull(seq)
	return &pullIterator[E]{next: next, stop: stop}
}

type pullIterator[E any] struct {
	next func() (E, bool)
	stop func()
	cur  E
}

func (p *pullIterator[E]) Next() bool {
	v, ok := p.next()
	if ok {
		p.cur = v
	}
	return ok
}

func (p *pullIterator[E]) Value() E { return p.cur }

func (p *pullIterator[E]) Close() error {
	p.stop()
	return nil
}
