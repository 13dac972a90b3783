// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "fmt"

// Label identifies a resumable point in a task's control-flow graph.
// Labels are dense 0-based indexes into a machine's label table,
// assigned monotonically and never reused within one machine.
type Label uint32

// Machine is the label table shared by all combinators composing one
// task expression. It maps labels to continuations: zero-argument
// functions producing the next Step. Continuations for different labels
// may logically produce different result types, so entries are stored
// type-erased; Jump recovers the declared type at the call site.
//
// A machine is privately owned by one driver and touched only by the
// single in-flight advance, so it carries no locks. Its lifetime is one
// top-level Run invocation.
type Machine struct {
	labels []any
	serial Serial
}

// NewMachine creates an empty machine with a fresh serial.
// Run creates one per task; front ends normally never call this directly.
func NewMachine() *Machine {
	return &Machine{serial: nextSerial()}
}

// Serial returns the serial number assigned to this machine.
func (m *Machine) Serial() Serial {
	return m.serial
}

// Alloc assigns the next label with no continuation installed.
// The continuation is installed later with SetCode, which allows
// forward references such as a loop entry jumping to itself.
func (m *Machine) Alloc() Label {
	m.labels = append(m.labels, nil)
	return Label(len(m.labels) - 1)
}

// SetCode installs (or overwrites) the continuation for a label.
func SetCode[T any](m *Machine, l Label, code func() Step[T]) {
	m.labels[l] = code
}

// Code allocates a label and installs its continuation in one call.
func Code[T any](m *Machine, code func() Step[T]) Label {
	l := m.Alloc()
	SetCode(m, l, code)
	return l
}

// Jump invokes the continuation installed at l.
// The label must have been declared with the same result type T;
// a mismatch is a type-confusion defect and panics. It is not a
// recoverable error and is never caught by TryWith.
func Jump[T any](m *Machine, l Label) Step[T] {
	code, ok := m.labels[l].(func() Step[T])
	if !ok {
		badLabel(m, l)
	}
	return code()
}

// badLabel panics on label/type confusion or an uninstalled label.
// Extracted as a noinline function so that Jump remains inlineable.
//
//go:noinline
func badLabel(m *Machine, l Label) {
	panic(defect(fmt.Sprintf("task: label %d type mismatch (machine %d, have %T)",
		l, m.serial, m.labels[l])))
}
