package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslationErrorMessage(t *testing.T) {
	err := Newf(ErrMalformed, 0x12, "branch target IL_%04x is not an instruction", 0x40)
	require.Equal(t, "malformed input at IL_0012: branch target IL_0040 is not an instruction", err.Error())

	err.WithMethod("Program::Main")
	require.Equal(t, "Program::Main: malformed input at IL_0012: branch target IL_0040 is not an instruction", err.Error())

	noOffset := New(ErrBudget, NoOffset, "exceeded 10 steps").WithMethod("M")
	require.Equal(t, "M: budget exceeded: exceeded 10 steps", noOffset.Error())
}

func TestTranslationErrorFatality(t *testing.T) {
	require.False(t, New(ErrMalformed, 0, "x").IsFatal())
	require.False(t, New(ErrBudget, 0, "x").IsFatal())
	require.True(t, New(ErrUnclaimed, 0, "x").IsFatal())
	require.True(t, New(ErrInternal, 0, "x").IsFatal())
}

func TestKindOfThroughWrapping(t *testing.T) {
	cause := errors.New("bad region")
	err := New(ErrMalformed, 4, "invalid handler").WithCause(cause)
	wrapped := fmt.Errorf("translate: %w", err)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, ErrMalformed, kind)
	require.True(t, errors.Is(wrapped, cause))
	require.False(t, IsFatal(wrapped))

	_, ok = KindOf(cause)
	require.False(t, ok)
	require.True(t, IsFatal(fmt.Errorf("x: %w", New(ErrUnclaimed, 1, "no parser"))))
}
