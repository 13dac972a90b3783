// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package task compiles sequential-looking code into resumable
// asynchronous computations backed by futures.
//
// A task is assembled from combinators over a shared [Machine]: a
// growable label table mapping resume points to continuations. Each
// unit of synchronous progress yields a [Step] — a final value, a
// hand-off to another future, or a suspension on a pending completion
// with the label to resume at. [Run] drives the step graph, advancing
// once per completion callback, and produces a [Future].
//
// # Architecture
//
//   - Step protocol: [Step] is a three-variant value (Return,
//     ReturnFrom, Await). Every suspension point maps to a distinct
//     [Label]; resuming after an asynchronous wait is a jump.
//   - Label table: [Machine] stores continuations type-erased,
//     recovered at the call site by [Jump]. Labels are allocated
//     lazily; loops and protected regions build bodies on demand.
//   - Await adapters: [Bind] and [BindDetached] convert anything
//     exposing the [Awaiter] capability into a step, running the
//     continuation synchronously when the source already completed.
//   - Driver: [Run] settles immediately on Return, returns the
//     handed-off future itself on ReturnFrom, and otherwise allocates
//     a driver advancing strictly one step per completion callback.
//   - Futures: [Promise]/[Future] settle at most once, store the
//     outcome as [code.hybscloud.com/kont.Either], answer non-blocking
//     inspection with [code.hybscloud.com/iox.ErrWouldBlock], and wait
//     with adaptive backoff without spawning goroutines or channels.
//
// # Combinators
//
// [Zero], [Return], [ReturnFrom], [Combine], [While], [For],
// [TryWith], [TryFinally], [Using], [Bind], [BindDetached], and [Run]
// are the stable entry points for a front end translating sequential
// syntax one-to-one: statement sequencing becomes Combine, loops
// become While/For, try/catch becomes TryWith, try/finally and
// resource scopes become TryFinally and Using, and every await becomes
// a Bind.
//
// # Failure Semantics
//
// Failures raised in task bodies are caught only by an enclosing
// [TryWith] or [TryFinally], otherwise they surface as a rejected
// future. A failure carried by an awaited future is raised at result
// retrieval, so `try { await f } with ...` observes it exactly like a
// synchronous raise. [TryFinally] runs its compensation exactly once
// on every terminal path, before the failure propagates. Run itself
// never fails synchronously: a failure while constructing the very
// first step yields an already-rejected future. Label/variant type
// confusion is a defect, panics, and is never caught.
//
// # Integration
//
//   - [Pipe]: an awaitable bounded SPSC source over
//     [code.hybscloud.com/lfq], bridging a producer goroutine into
//     task computations.
//   - [RunEffect] and [RunEffectExpr]: drive a
//     [code.hybscloud.com/kont] effect protocol with a [Dispatcher]
//     resolving each operation to a future.
//   - [Yield]: a deterministic single-suspension awaitable.
//
// # Limitations
//
// Chains of synchronously completed awaits run nested on the calling
// stack; there is no trampolining, and very deep synchronous chains
// grow the stack. Cancellation and timeouts are properties of the
// composed futures, not of these combinators.
//
// # Example
//
//	f := task.Run(func(m *task.Machine) task.Step[int] {
//		return task.Bind(m, fetchUser(), func(u User) task.Step[int] {
//			return task.Bind(m, fetchScore(u), func(s int) task.Step[int] {
//				return task.Return(s + 1)
//			})
//		})
//	})
//	v, err := f.Get()
package task
