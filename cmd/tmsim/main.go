// Command tmsim runs a nondeterministic Turing machine simulator. It reads a
// machine definition and a list of input strings from stdin and prints one
// verdict character per input to stdout.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/supraxlab/tmsim/internal/config"
	"github.com/supraxlab/tmsim/internal/sched"
	"github.com/supraxlab/tmsim/internal/tape"
	"github.com/supraxlab/tmsim/internal/trace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		maxStepsOverride uint64
		enableTrace      bool
		pageSize         int
	)

	run := &cobra.Command{
		Use:   "run",
		Short: "Run a machine definition read from stdin, printing one verdict per input line",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize > 0 {
				tape.PageSize = pageSize
			}

			log := trace.NewNoop()
			if enableTrace {
				l, err := trace.NewDevelopment()
				if err != nil {
					return err
				}
				log = l
			}

			return execute(cmd.InOrStdin(), cmd.OutOrStdout(), maxStepsOverride, log)
		},
	}
	run.Flags().Uint64Var(&maxStepsOverride, "max-steps", 0, "override the max section's step budget (0 = use the definition's own value)")
	run.Flags().BoolVar(&enableTrace, "trace", false, "enable debug-level trace logging to stderr")
	run.Flags().IntVar(&pageSize, "page-size", 0, "override the tape page size in cells (0 = default)")

	root := &cobra.Command{
		Use:   "tmsim",
		Short: "Nondeterministic Turing machine simulator",
	}
	root.AddCommand(run)
	return root
}

// execute reads one definition stream from r, runs the scheduler once per
// run string, and writes one verdict character per line to w.
func execute(r io.Reader, w io.Writer, maxStepsOverride uint64, log trace.Logger) error {
	def, err := config.Load(r)
	if err != nil {
		return err
	}

	maxSteps := def.MaxSteps
	if maxStepsOverride > 0 {
		maxSteps = maxStepsOverride
	}

	s := sched.New(def.Index, maxSteps, log)
	out := bufio.NewWriter(w)
	defer out.Flush()

	for _, input := range def.Inputs {
		v := s.Run(sched.RootFromInput([]byte(input)))
		fmt.Fprintln(out, v.String())
	}
	return nil
}
