//go:build !windows

package interp

import (
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// TestTestTTYDetection exercises "[[ -t N ]]" against both a real pseudo-
// terminal and a plain pipe, the same primary/secondary split the original
// runner's terminal stdio test used.
func TestTestTTYDetection(t *testing.T) {
	primary, secondary, err := pty.Open()
	require.NoError(t, err)
	defer primary.Close()
	defer secondary.Close()

	env := NewEnvironment("flash", nil)
	ev := NewEvaluator(env)
	ev.Stdin = secondary
	status, err := env.interpretString(ev, `[[ -t 0 ]]`)
	require.NoError(t, err)
	require.Equal(t, 0, status)

	ev.Stdin = strings.NewReader("not a tty\n")
	status, err = env.interpretString(ev, `[[ -t 0 ]]`)
	require.NoError(t, err)
	require.Equal(t, 1, status)
}
