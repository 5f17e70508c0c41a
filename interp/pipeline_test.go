package interp

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/flashsh/flash/internal"
)

// TestMain normalizes the locale the same way the interpreter's own
// script-execution tests need, so string comparisons and collation-
// sensitive builtins behave the same on every machine this runs on.
func TestMain(m *testing.M) {
	internal.TestMainSetup()
	os.Exit(m.Run())
}

// TestPipelineNoGoroutineLeak exercises runPipeline's per-stage os.Pipe +
// errgroup fan-out and checks it leaves nothing running behind once the
// pipeline finishes, the same property holomush's dispatcher tests check
// around their own goroutine fan-out.
func TestPipelineNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := NewEnvironment("flash", nil)
	ev := NewEvaluator(env)
	var out internal.ConcBuffer
	ev.Stdout = &out

	status, err := env.interpretString(ev, `printf 'a\nb\nc\n' | grep b | wc -l`)
	require.NoError(t, err)
	require.Equal(t, 0, status)
}

func TestPipelineExitStatusIsLastStage(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := NewEnvironment("flash", nil)
	ev := NewEvaluator(env)
	var out internal.ConcBuffer
	ev.Stdout = &out

	status, err := env.interpretString(ev, `true | false`)
	require.NoError(t, err)
	require.Equal(t, 1, status)
}

func TestPipelineExitStatusIgnoresEarlyFailureByDefault(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := NewEnvironment("flash", nil)
	ev := NewEvaluator(env)
	var out internal.ConcBuffer
	ev.Stdout = &out

	status, err := env.interpretString(ev, `false | true`)
	require.NoError(t, err)
	require.Equal(t, 0, status)
}

func TestPipelineExitStatusUnderPipefail(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := NewEnvironment("flash", nil)
	ev := NewEvaluator(env)
	var out internal.ConcBuffer
	ev.Stdout = &out

	status, err := env.interpretString(ev, `set -o pipefail; false | true`)
	require.NoError(t, err)
	require.Equal(t, 1, status)
}

func TestPipelineExitStatusUnderPipefailAllSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	env := NewEnvironment("flash", nil)
	ev := NewEvaluator(env)
	var out internal.ConcBuffer
	ev.Stdout = &out

	status, err := env.interpretString(ev, `set -o pipefail; true | true`)
	require.NoError(t, err)
	require.Equal(t, 0, status)
}
