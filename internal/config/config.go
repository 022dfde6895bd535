// Package config loads a machine definition stream (the tr/acc/max/run
// sections described by the external interface) into the pieces the rest of
// the simulator needs: a built transition index, the step budget, and the
// list of run strings, all read in full before Load returns.
//
// Malformed-input tolerance is handled here and in the index, never by
// returning an error: an ill-formed tr line ends that section early,
// duplicate transition records simply accumulate, and out-of-range accept
// numbers are ignored by the index itself. The loader returns an error only for the one condition
// that is genuinely exceptional: an I/O failure from the underlying reader.
package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/supraxlab/tmsim/internal/index"
	"github.com/supraxlab/tmsim/internal/tape"
)

// section names the four parts of the definition stream, in the order they
// must appear.
type section int

const (
	sectionNone section = iota
	sectionTr
	sectionAcc
	sectionMax
	sectionRun
)

// Definition is the parsed, ready-to-run machine: the built index, the step
// budget, and every line of the "run" section up to EOF.
type Definition struct {
	Index    *index.TransitionIndex
	MaxSteps uint64
	Inputs   []string

	// pendingAccept buffers acc-section state numbers until Build gives us
	// an index to apply them to.
	pendingAccept []int
}

// Load reads a complete definition stream from r and returns the parsed
// Definition. The only returned error is an I/O failure surfaced by the
// scanner (bufio.Scanner.Err()); every other malformed-input condition is
// tolerated silently per the loader's contract.
func Load(r io.Reader) (*Definition, error) {
	b := index.NewBuilder()
	def := &Definition{}

	sc := bufio.NewScanner(r)
	cur := sectionNone

	for sc.Scan() {
		raw := sc.Text()

		// Run strings are taken verbatim, including an empty line, which
		// is the valid encoding of the empty input string, and including
		// one that happens to spell "tr"/"acc"/"max"/"run": the run list
		// runs to EOF with no further section headers recognized once it
		// starts, so a blank line only means "skip this line" outside
		// that section.
		if cur == sectionRun {
			def.Inputs = append(def.Inputs, raw)
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch line {
		case "tr":
			cur = sectionTr
			continue
		case "acc":
			cur = sectionAcc
			continue
		case "max":
			cur = sectionMax
			continue
		case "run":
			cur = sectionRun
			continue
		}

		switch cur {
		case sectionTr:
			t, ok := parseTransitionLine(line)
			if !ok {
				// Malformed tr line: this section ends early, per the
				// tolerance rule. The line is not reprocessed as a section
				// header or consumed by any other section.
				cur = sectionNone
				continue
			}
			b.Add(t.qIn, t.in, t.out, t.move, t.qOut)

		case sectionAcc:
			n, err := strconv.Atoi(line)
			if err != nil {
				continue
			}
			// Out-of-range numbers are silently ignored by MarkAccept once
			// the index is built; record them now and reapply after Build.
			def.pendingAccept = append(def.pendingAccept, n)

		case sectionMax:
			n, err := strconv.ParseUint(line, 10, 64)
			if err != nil {
				continue
			}
			def.MaxSteps = n
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "config: reading definition stream")
	}

	def.Index = b.Build()
	for _, n := range def.pendingAccept {
		def.Index.MarkAccept(n)
	}
	def.pendingAccept = nil

	return def, nil
}

type transitionLine struct {
	qIn, qOut int
	in, out   tape.Symbol
	move      tape.Move
}

// parseTransitionLine parses one "<q_in> <c_in> <c_out> <move> <q_out>"
// line. An invalid move character is treated as Stay rather than rejecting
// the line, per the core's failure semantics; any other structural problem
// (wrong field count, non-numeric state) fails the line outright, which the
// caller treats as ending the tr section.
func parseTransitionLine(line string) (transitionLine, bool) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return transitionLine{}, false
	}

	qIn, err := strconv.Atoi(fields[0])
	if err != nil {
		return transitionLine{}, false
	}
	in, ok := parseSymbol(fields[1])
	if !ok {
		return transitionLine{}, false
	}
	out, ok := parseSymbol(fields[2])
	if !ok {
		return transitionLine{}, false
	}
	qOut, err := strconv.Atoi(fields[4])
	if err != nil {
		return transitionLine{}, false
	}

	return transitionLine{
		qIn:  qIn,
		qOut: qOut,
		in:   in,
		out:  out,
		move: parseMove(fields[3]),
	}, true
}

// parseSymbol accepts "_" as BLANK or a single byte literal.
func parseSymbol(field string) (tape.Symbol, bool) {
	if field == "_" {
		return tape.BLANK, true
	}
	if len(field) != 1 {
		return 0, false
	}
	return field[0], true
}

// parseMove treats anything other than "L" or "R" as Stay.
func parseMove(field string) tape.Move {
	switch field {
	case "L":
		return tape.Left
	case "R":
		return tape.Right
	default:
		return tape.Stay
	}
}
