package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supraxlab/tmsim/internal/trace"
)

// Feeding the exact byte stream of M1's definition end-to-end through
// execute reproduces the documented verdict for each input line, the same
// contract the "tmsim run" command exposes over stdin/stdout.
func TestExecute_M1RoundTrip(t *testing.T) {
	stream := strings.Join([]string{
		"tr",
		"0 a a R 0",
		"0 b b R 1",
		"1 _ _ S 1",
		"acc",
		"1",
		"max",
		"100",
		"run",
		"ab",
		"aa",
		"b",
		"aab",
	}, "\n") + "\n"

	var out bytes.Buffer
	err := execute(strings.NewReader(stream), &out, 0, trace.NewNoop())
	require.NoError(t, err)

	assert.Equal(t, "1\n0\n1\n1\n", out.String())
}

// A --max-steps override takes precedence over the definition's own max
// section.
func TestExecute_MaxStepsOverride(t *testing.T) {
	stream := "tr\n0 _ _ R 0\nacc\n1\nmax\n1000\nrun\n\n"

	var out bytes.Buffer
	err := execute(strings.NewReader(stream), &out, 3, trace.NewNoop())
	require.NoError(t, err)

	assert.Equal(t, "U\n", out.String())
}
