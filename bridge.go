// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"code.hybscloud.com/kont"
)

// Dispatcher resolves a suspended effect operation to its eventual
// result. It is the asynchronous counterpart of kont.Handler: instead
// of producing the resume value synchronously, it returns a future the
// bridge awaits before resuming the protocol.
type Dispatcher interface {
	DispatchAsync(op kont.Operation) *Future[kont.Resumed]
}

// DispatcherFunc adapts a dispatch function to a Dispatcher.
type DispatcherFunc func(op kont.Operation) *Future[kont.Resumed]

// DispatchAsync implements Dispatcher.
func (f DispatcherFunc) DispatchAsync(op kont.Operation) *Future[kont.Resumed] {
	return f(op)
}

// RunEffect drives a Cont-world effect protocol as a task: each effect
// suspension is resolved through d and the protocol resumes once the
// returned future settles. Effects resolved by already-settled futures
// advance synchronously on the calling stack.
func RunEffect[R any](protocol kont.Eff[R], d Dispatcher) *Future[R] {
	return Run(func(m *Machine) Step[R] {
		result, susp := kont.Step(protocol)
		return driveSuspensions(m, d, result, susp)
	})
}

// RunEffectExpr drives an Expr-world effect protocol as a task.
func RunEffectExpr[R any](protocol kont.Expr[R], d Dispatcher) *Future[R] {
	return Run(func(m *Machine) Step[R] {
		result, susp := kont.StepExpr(protocol)
		return driveSuspensions(m, d, result, susp)
	})
}

// driveSuspensions awaits each dispatched operation in sequence,
// resuming the protocol with the settled value until completion.
func driveSuspensions[R any](m *Machine, d Dispatcher, result R, susp *kont.Suspension[R]) Step[R] {
	loop := While(m, func() bool {
		return susp != nil
	}, func() Step[struct{}] {
		return Bind(m, d.DispatchAsync(susp.Op()), func(v kont.Resumed) Step[struct{}] {
			result, susp = susp.Resume(v)
			return Zero()
		})
	})
	return Combine(m, loop, func() Step[R] {
		return Return(result)
	})
}
