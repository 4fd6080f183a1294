package bp

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestIOErrorMessage(t *testing.T) {
	tests := []struct {
		err  *IOError
		want string
	}{
		{newIOError("open", "a.bp", "", ErrNotBP), "bp: open a.bp: not a BP file: signature not found"},
		{newIOError("schedule", "a.bp", "v/array", ErrNotFound), "bp: schedule a.bp [v/array]: variable not found"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIOErrorsAreDistinct(t *testing.T) {
	a := newIOError("perform", "a.bp", "x", ErrChecksum)
	b := newIOError("perform", "a.bp", "y", ErrChecksum)
	if a == b {
		t.Error("failure sites share an error value")
	}
	if !errors.Is(a, ErrChecksum) || !errors.Is(b, ErrChecksum) {
		t.Error("expected both to wrap ErrChecksum")
	}

	wrapped := fmt.Errorf("loading kernels: %w", a)
	if !IsIOError(wrapped) {
		t.Error("IsIOError should see through wrapping")
	}
	if IsIOError(ErrChecksum) {
		t.Error("bare sentinel is not an *IOError")
	}
}

func TestTypeMismatchMessage(t *testing.T) {
	err := &TypeMismatchError{Var: "v/array", Stored: "float32", Dest: reflect.TypeOf(int64(0))}
	want := `bp: variable "v/array" stores float32, cannot read into int64`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestComm(t *testing.T) {
	c := NewComm("solver", 3, 8)
	if c.ID() != "solver" || c.Rank() != 3 || c.Size() != 8 {
		t.Errorf("unexpected comm %v", c)
	}
	if s := fmt.Sprint(c); s != "solver[3/8]" {
		t.Errorf("String() = %q", s)
	}
}
