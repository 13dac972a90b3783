// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"strings"
	"testing"

	"code.hybscloud.com/task"
)

func TestStepReturnVariant(t *testing.T) {
	s := task.Return(42)
	if s.Kind() != task.StepReturn {
		t.Fatalf("kind got %v, want StepReturn", s.Kind())
	}
	if s.Value() != 42 {
		t.Fatalf("value got %d, want 42", s.Value())
	}
}

func TestStepReturnFromVariant(t *testing.T) {
	f := task.Resolved("hello")
	s := task.ReturnFrom(f)
	if s.Kind() != task.StepReturnFrom {
		t.Fatalf("kind got %v, want StepReturnFrom", s.Kind())
	}
	if s.Future() != f {
		t.Fatal("Future should return the handed-off future identically")
	}
}

func TestStepZeroIsUnitReturn(t *testing.T) {
	s := task.Zero()
	if s.Kind() != task.StepReturn {
		t.Fatalf("kind got %v, want StepReturn", s.Kind())
	}
}

func TestStepMismatchedAccessPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on mismatched variant access")
		}
	}()
	_ = task.Return(1).Future()
}

func TestMachineCodeAndJump(t *testing.T) {
	m := task.NewMachine()
	l := task.Code(m, func() task.Step[int] {
		return task.Return(7)
	})
	s := task.Jump[int](m, l)
	if s.Value() != 7 {
		t.Fatalf("jump result got %d, want 7", s.Value())
	}
}

func TestMachineForwardReference(t *testing.T) {
	m := task.NewMachine()
	l := m.Alloc()
	// install after allocation, as loop entries do
	task.SetCode(m, l, func() task.Step[string] {
		return task.Return("late")
	})
	if got := task.Jump[string](m, l).Value(); got != "late" {
		t.Fatalf("got %q, want %q", got, "late")
	}
}

func TestMachineSetCodeOverwrites(t *testing.T) {
	m := task.NewMachine()
	l := task.Code(m, func() task.Step[int] {
		return task.Return(1)
	})
	task.SetCode(m, l, func() task.Step[int] {
		return task.Return(2)
	})
	if got := task.Jump[int](m, l).Value(); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestMachineLabelsAreDense(t *testing.T) {
	m := task.NewMachine()
	for want := task.Label(0); want < 8; want++ {
		got := m.Alloc()
		if got != want {
			t.Fatalf("label got %d, want %d", got, want)
		}
	}
}

func TestMachineSerialsMonotonic(t *testing.T) {
	a := task.NewMachine()
	b := task.NewMachine()
	if b.Serial() <= a.Serial() {
		t.Fatalf("serials not monotonic: %d then %d", a.Serial(), b.Serial())
	}
}

func TestJumpTypeConfusionIsDefect(t *testing.T) {
	m := task.NewMachine()
	l := task.Code(m, func() task.Step[int] {
		return task.Return(1)
	})
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on label type confusion")
		}
		s, ok := r.(interface{ String() string })
		if !ok || !strings.Contains(s.String(), "type mismatch") {
			t.Fatalf("unexpected panic value: %v", r)
		}
	}()
	_ = task.Jump[string](m, l)
}

// Type confusion must not be catchable by TryWith: the defect escapes
// Run as a panic instead of rejecting the future.
func TestTypeConfusionEscapesTryWith(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected defect panic to escape Run")
		}
	}()
	task.Run(func(m *task.Machine) task.Step[int] {
		return task.TryWith(m, func() task.Step[int] {
			l := task.Code(m, func() task.Step[string] {
				return task.Return("x")
			})
			return task.Jump[int](m, l)
		}, func(err error) task.Step[int] {
			return task.Return(-1)
		})
	})
}
