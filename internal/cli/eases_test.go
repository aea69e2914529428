package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasesCommand(t *testing.T) {
	out, err := execute(t, "eases")
	require.NoError(t, err)
	names := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, names, "linear")
	assert.Contains(t, names, "power2.out")
	assert.Contains(t, names, "bounce.inOut")
	assert.Contains(t, names, "spring")
}

func TestEaseCommand(t *testing.T) {
	out, err := execute(t, "ease", "linear", "--samples", "4")
	require.NoError(t, err)
	assert.Equal(t, "0.00\t0.0000\n0.25\t0.2500\n0.50\t0.5000\n0.75\t0.7500\n1.00\t1.0000\n", out)
}

func TestEaseCommandPlot(t *testing.T) {
	out, err := execute(t, "ease", "steps(2)", "-n", "2", "--plot")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0.50\t0.5000\t"+strings.Repeat("#", 20), lines[1])
	assert.Equal(t, "1.00\t1.0000\t"+strings.Repeat("#", 40), lines[2])
}

func TestEaseCommandErrors(t *testing.T) {
	_, err := execute(t, "ease", "wobble")
	assert.ErrorContains(t, err, `unknown ease "wobble"`)

	_, err = execute(t, "ease", "linear", "--samples", "0")
	assert.ErrorContains(t, err, "samples must be at least 1")
}
