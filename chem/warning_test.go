package chem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWarnInvokesRegisteredCallback(t *testing.T) {
	var got string
	SetWarningCallback(func(message string) { got = message })
	defer SetWarningCallback(nil)

	Warn("bad field %q", "foo")
	require.Equal(t, `bad field "foo"`, got)
}

func TestWarnDefaultCallbackDoesNotPanic(t *testing.T) {
	SetWarningCallback(nil)
	require.NotPanics(t, func() { Warn("ignored") })
}
