// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"fmt"
	"runtime/debug"
)

// Failure taxonomy:
//
//   - Body failures travel as panics within one advance and are caught
//     only by an enclosing TryWith/TryFinally, else surface as a
//     rejected future. Error panic values pass through unchanged;
//     anything else is wrapped in *PanicError.
//   - Awaited-future failures surface at result retrieval and are
//     raised through the same channel, so TryWith catches them
//     identically to a synchronous raise.
//   - Type-confusion defects (label/variant misuse) panic with a
//     "task:" prefixed string and are deliberately not trapped.

// defect marks unrecoverable misuse (type confusion, protocol breaks).
// trap re-raises defects so they are never converted into task failures.
type defect string

func (d defect) String() string { return string(d) }

// PanicError wraps a non-error value recovered from a panicking task
// body, preserving the stack captured at the recovery point.
type PanicError struct {
	value any
	stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("task: panic: %v", p.value)
}

// Value returns the value originally passed to panic.
func (p *PanicError) Value() any { return p.value }

// Stack returns the stack captured when the panic was recovered.
func (p *PanicError) Stack() []byte { return p.stack }

// raise propagates err as a task failure. The panic is recovered at the
// nearest TryWith/TryFinally entry or at the driver, never escaping Run.
func raise(err error) {
	panic(err)
}

// trap converts a recovered panic value into the failure error form.
// Defect panics ("task:" prefixed strings) are re-raised untouched.
func trap(r any) error {
	switch e := r.(type) {
	case defect:
		panic(r)
	case error:
		return e
	default:
		return &PanicError{value: e, stack: debug.Stack()}
	}
}

// attempt runs f, converting a panic into the failure error form.
func attempt[T any](f func() Step[T]) (step Step[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = trap(r)
		}
	}()
	return f(), nil
}

// retrieve extracts the awaiter's completed result, raising failures.
func retrieve[T any](aw Awaiter[T]) T {
	v, err := aw.Result()
	if err != nil {
		raise(err)
	}
	return v
}
