package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommander struct {
	err error
	ran *bool
}

func (s stubCommander) Run() error {
	*s.ran = true
	return s.err
}

func TestRun_InvokesCommand(t *testing.T) {
	ran := false
	var gotName string
	var gotArgs []string

	e := New().WithCommander(func(name string, args ...string) Commander {
		gotName = name
		gotArgs = args
		return stubCommander{ran: &ran}
	})

	err := e.Run("COMPILE", []string{"gcc", "-c", "main.c", "-o", "main.o"})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "gcc", gotName)
	assert.Equal(t, []string{"-c", "main.c", "-o", "main.o"}, gotArgs)
}

func TestRun_PropagatesFailure(t *testing.T) {
	ran := false
	e := New().WithCommander(func(name string, args ...string) Commander {
		return stubCommander{ran: &ran, err: errors.New("exit status 1")}
	})

	err := e.Run("COMPILE", []string{"gcc", "-c", "broken.c"})
	assert.Error(t, err)
}

func TestRun_DryRunSpawnsNothing(t *testing.T) {
	ran := false
	e := New().WithCommander(func(name string, args ...string) Commander {
		return stubCommander{ran: &ran}
	})
	e.DryRun = true

	err := e.Run("RUN", []string{"./main.out"})
	require.NoError(t, err)
	assert.False(t, ran, "dry-run must not spawn processes")
}

func TestRun_EmptyCommand(t *testing.T) {
	err := New().Run("RUN", nil)
	assert.Error(t, err)
}
