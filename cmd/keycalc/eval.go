package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/keycalc"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		inname, verb string
		echo         bool
	)
	cmd := &cobra.Command{
		Use:   "eval [expr...]",
		Short: "Evaluate display expressions like 12×3÷4+10%",
		Long: "Evaluate each argument as a calculator display. With no arguments,\n" +
			"or with --in, evaluate each line of the input instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs := args
			f, err := infile(cmd, inname, len(args) == 0)
			if err != nil {
				return err
			}
			if f != nil {
				defer f.Close()
				lines, err := readLines(f)
				if err != nil {
					return err
				}
				srcs = append(lines, srcs...)
			}

			ctx := keycalc.NewContext(a.cfg.Eval.Options()...)
			out := cmd.OutOrStdout()
			verb += "\n"
			for _, src := range srcs {
				if echo {
					if e, err := keycalc.ParseBuffer(src); err == nil {
						fmt.Fprintf(out, "%v : ", e)
					}
				}
				r := ctx.Evaluate(src)
				switch r.Kind {
				case keycalc.OutcomeValue:
					fmt.Fprintf(out, verb, r.Value)
				case keycalc.OutcomeError:
					fmt.Fprintf(out, "Error: %v\n", r.Err)
					a.log.WithField("expression", src).WithError(r.Err).Debug("evaluation failed")
				default:
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inname, "in", "", "input file, - for stdin (default stdin if no args given)")
	cmd.Flags().StringVar(&verb, "fmt", "%v", "result formatting string")
	cmd.Flags().BoolVar(&echo, "echo", false, "print parse trees")
	return cmd
}

// infile opens the input named by inname, or the command's input if inname is
// - or std is true. The result is nil if there is no input.
func infile(cmd *cobra.Command, inname string, std bool) (io.ReadCloser, error) {
	switch {
	case inname != "" && inname != "-":
		f, err := os.Open(inname)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		return f, nil
	case inname == "-", std:
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return nil, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
