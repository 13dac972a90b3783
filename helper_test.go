// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"code.hybscloud.com/task"
)

// countingAwaitable wraps an awaitable and counts callback
// registrations, for asserting the one-registration-per-await
// discipline of the driver.
type countingAwaitable[T any] struct {
	src       task.Awaitable[T]
	registers int
}

func (c *countingAwaitable[T]) Awaiter() task.Awaiter[T] {
	return &countingAwaiter[T]{aw: c.src.Awaiter(), n: &c.registers}
}

type countingAwaiter[T any] struct {
	aw task.Awaiter[T]
	n  *int
}

func (c *countingAwaiter[T]) Done() bool         { return c.aw.Done() }
func (c *countingAwaiter[T]) Result() (T, error) { return c.aw.Result() }
func (c *countingAwaiter[T]) OnComplete(fn func()) {
	*c.n++
	c.aw.OnComplete(fn)
}

// countingIterator yields 1..n and records Next calls and Close calls.
type countingIterator struct {
	n      int
	cur    int
	nexts  int
	closes int
}

func (it *countingIterator) Next() bool {
	it.nexts++
	if it.cur >= it.n {
		return false
	}
	it.cur++
	return true
}

func (it *countingIterator) Value() int { return it.cur }

func (it *countingIterator) Close() error {
	it.closes++
	return nil
}

// pending returns a promise plus its future for tests that settle by
// hand after the task has suspended.
func pending[T any]() (*task.Promise[T], *task.Future[T]) {
	p := task.NewPromise[T]()
	return p, p.Future()
}
