// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/task"
)

// BenchmarkRunReturn measures the immediate-return fast path.
func BenchmarkRunReturn(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		task.Run(func(m *task.Machine) task.Step[int] {
			return task.Return(42)
		})
	}
}

// BenchmarkRunReturnFrom measures the future hand-off fast path.
func BenchmarkRunReturnFrom(b *testing.B) {
	b.ReportAllocs()
	src := task.Resolved(42)
	for b.Loop() {
		task.Run(func(m *task.Machine) task.Step[int] {
			return task.ReturnFrom(src)
		})
	}
}

// BenchmarkBindResolved measures a 3-deep bind chain over settled futures.
func BenchmarkBindResolved(b *testing.B) {
	b.ReportAllocs()
	one := task.Resolved(1)
	for b.Loop() {
		task.Run(func(m *task.Machine) task.Step[int] {
			return task.Bind(m, one, func(a int) task.Step[int] {
				return task.Bind(m, one, func(c int) task.Step[int] {
					return task.Bind(m, one, func(d int) task.Step[int] {
						return task.Return(a + c + d)
					})
				})
			})
		})
	}
}

// BenchmarkYieldLoop measures an 8-iteration loop suspending at a
// yield point on every iteration.
func BenchmarkYieldLoop(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		task.Run(func(m *task.Machine) task.Step[int] {
			i := 0
			loop := task.While(m, func() bool { return i < 8 }, func() task.Step[struct{}] {
				i++
				return task.Bind(m, task.Yield(), func(struct{}) task.Step[struct{}] {
					return task.Zero()
				})
			})
			return task.Combine(m, loop, func() task.Step[int] {
				return task.Return(i)
			})
		})
	}
}

// BenchmarkTryFinally measures the protected-region overhead with one
// suspension inside the body.
func BenchmarkTryFinally(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		task.Run(func(m *task.Machine) task.Step[int] {
			return task.TryFinally(m, func() task.Step[int] {
				return task.Bind(m, task.Yield(), func(struct{}) task.Step[int] {
					return task.Return(1)
				})
			}, func() {})
		})
	}
}

// BenchmarkPromiseSettle measures a pending task resumed by a later
// promise settlement.
func BenchmarkPromiseSettle(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		p := task.NewPromise[int]()
		f := task.Run(func(m *task.Machine) task.Step[int] {
			return task.Bind(m, p.Future(), func(n int) task.Step[int] {
				return task.Return(n + 1)
			})
		})
		p.Complete(41)
		f.Result()
	}
}

// BenchmarkPipeRoundTrip measures a single send/recv through a pipe.
func BenchmarkPipeRoundTrip(b *testing.B) {
	skipRace(b)
	b.ReportAllocs()
	p := task.NewPipe[int](4)
	for b.Loop() {
		p.TrySend(42)
		p.TryRecv()
	}
}

// BenchmarkEffectDispatch measures bridging a 2-effect protocol through
// a synchronous dispatcher.
func BenchmarkEffectDispatch(b *testing.B) {
	b.ReportAllocs()
	d := task.DispatcherFunc(func(op kont.Operation) *task.Future[kont.Resumed] {
		return task.Resolved[kont.Resumed](len(op.(fetch).key))
	})
	for b.Loop() {
		protocol := kont.Bind(kont.Perform(fetch{key: "a"}), func(a int) kont.Eff[int] {
			return kont.Bind(kont.Perform(fetch{key: "bb"}), func(c int) kont.Eff[int] {
				return kont.Pure(a + c)
			})
		})
		task.RunEffect(protocol, d)
	}
}
