// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

// Step is one unit of synchronous progress of a task computation.
// It is one of three variants:
//
//   - Return: the computation finished with a value.
//   - ReturnFrom: the computation hands off to another future (tail call).
//   - Await: the computation is suspended on a pending completion and
//     resumes at a machine label once the completion fires.
//
// Steps are immutable and constructed fresh each time a label's
// continuation runs. Accessors are valid only for the matching variant;
// mismatched access is a defect and panics.
type Step[T any] struct {
	kind    StepKind
	value   T
	future  *Future[T]
	pending Completion
	label   Label
}

// StepKind identifies the active variant of a Step.
type StepKind uint8

const (
	// StepReturn marks a step carrying a final value.
	StepReturn StepKind = iota
	// StepReturnFrom marks a step handing off to another future.
	StepReturnFrom
	// StepAwait marks a step suspended on a pending completion.
	StepAwait
)

// Return lifts a final value into a completed step.
func Return[T any](v T) Step[T] {
	return Step[T]{kind: StepReturn, value: v}
}

// Zero is the completed unit step. It terminates bodies that produce
// no value, such as loop iterations.
func Zero() Step[struct{}] {
	return Return(struct{}{})
}

// ReturnFrom hands the computation off to f. Nothing follows a hand-off:
// the enclosing task settles exactly as f settles, and a top-level
// hand-off returns f itself from Run without a wrapper.
func ReturnFrom[T any](f *Future[T]) Step[T] {
	return Step[T]{kind: StepReturnFrom, future: f}
}

// awaiting constructs a suspended step resuming at label once c fires.
func awaiting[T any](c Completion, label Label) Step[T] {
	return Step[T]{kind: StepAwait, pending: c, label: label}
}

// Kind returns the active variant of the step.
func (s Step[T]) Kind() StepKind { return s.kind }

// Value returns the final value of a Return step.
// Panics on any other variant.
func (s Step[T]) Value() T {
	if s.kind != StepReturn {
		badVariant("Value", s.kind)
	}
	return s.value
}

// Future returns the hand-off target of a ReturnFrom step.
// Panics on any other variant.
func (s Step[T]) Future() *Future[T] {
	if s.kind != StepReturnFrom {
		badVariant("Future", s.kind)
	}
	return s.future
}

// Completion returns the pending completion of an Await step.
// Panics on any other variant.
func (s Step[T]) Completion() Completion {
	if s.kind != StepAwait {
		badVariant("Completion", s.kind)
	}
	return s.pending
}

// ResumeLabel returns the resume label of an Await step.
// Panics on any other variant.
func (s Step[T]) ResumeLabel() Label {
	if s.kind != StepAwait {
		badVariant("ResumeLabel", s.kind)
	}
	return s.label
}

// badVariant panics on mismatched variant access.
// Extracted as a noinline function so that accessors remain inlineable.
//
//go:noinline
func badVariant(accessor string, kind StepKind) {
	panic(defect("task: " + accessor + " on " + kind.String() + " step"))
}

func (k StepKind) String() string {
	switch k {
	case StepReturn:
		return "Return"
	case StepReturnFrom:
		return "ReturnFrom"
	case StepAwait:
		return "Await"
	default:
		return "<unknown>"
	}
}
