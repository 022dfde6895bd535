package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supraxlab/tmsim/internal/tape"
)

func TestLoad_M1(t *testing.T) {
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
	}, "\n") + "\n"

	def, err := Load(strings.NewReader(stream))
	require.NoError(t, err)

	assert.Equal(t, uint64(100), def.MaxSteps)
	assert.Equal(t, []string{"ab", "aa"}, def.Inputs)
	assert.True(t, def.Index.IsAccept(1))
	assert.False(t, def.Index.IsAccept(0))

	ts := def.Index.Lookup(0, 'a')
	require.Len(t, ts, 1)
	assert.Equal(t, 0, ts[0].Next)
	assert.Equal(t, tape.Right, ts[0].Move)
}

// A malformed tr line (wrong field count) ends the tr section early; later
// well-formed-looking lines in that position are not parsed as transitions.
func TestLoad_MalformedTrLineEndsSectionEarly(t *testing.T) {
	stream := strings.Join([]string{
		"tr",
		"0 a a R 0",
		"this is not a transition",
		"0 b b R 1",
		"acc",
		"0",
		"max",
		"10",
	}, "\n") + "\n"

	def, err := Load(strings.NewReader(stream))
	require.NoError(t, err)

	assert.NotEmpty(t, def.Index.Lookup(0, 'a'))
	assert.Empty(t, def.Index.Lookup(0, 'b'), "line after the malformed one is dropped, not parsed")
}

// Duplicate transition records for the same (state, input) accumulate
// rather than overwrite, producing nondeterministic fan-out.
func TestLoad_DuplicateTransitionsAccumulate(t *testing.T) {
	stream := "tr\n0 a x R 1\n0 a y L 2\nacc\nmax\n5\n"

	def, err := Load(strings.NewReader(stream))
	require.NoError(t, err)

	ts := def.Index.Lookup(0, 'a')
	assert.Len(t, ts, 2)
}

// An invalid move character is tolerated as Stay rather than rejecting the
// whole line.
func TestLoad_InvalidMoveCharBecomesStay(t *testing.T) {
	stream := "tr\n0 a a Z 0\nmax\n5\n"

	def, err := Load(strings.NewReader(stream))
	require.NoError(t, err)

	ts := def.Index.Lookup(0, 'a')
	require.Len(t, ts, 1)
	assert.Equal(t, tape.Stay, ts[0].Move)
}

// Out-of-range acc numbers are ignored rather than erroring.
func TestLoad_OutOfRangeAcceptIgnored(t *testing.T) {
	stream := "tr\n0 a a R 0\nacc\n99\nmax\n5\n"

	def, err := Load(strings.NewReader(stream))
	require.NoError(t, err)

	assert.False(t, def.Index.IsAccept(99))
}

// A reader that fails on its first read surfaces an error, the one case the loader
// does not tolerate silently.
type errReader struct{ afterLine int }

func (e *errReader) Read(p []byte) (int, error) {
	return 0, assert.AnError
}

func TestLoad_IOErrorPropagates(t *testing.T) {
	_, err := Load(&errReader{})
	require.Error(t, err)
}
