// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : main.go

// Command chemsel is a thin example CLI running a selection-language
// query against every step of a trajectory and printing the matching
// atom-index tuples.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cx-luo/chemfiles"
	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
	"github.com/cx-luo/chemfiles/selection"
)

var (
	inputFormat string
	step        int
	allSteps    bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chemsel <trajectory> <selection>",
		Short: "Run a selection query against a molecular trajectory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&inputFormat, "input-format", "", "format hint for the trajectory file (default: guessed from extension)")
	flags.IntVar(&step, "step", 0, "step to evaluate the selection at, ignored when --all-steps is set")
	flags.BoolVar(&allSteps, "all-steps", false, "evaluate the selection at every step instead of a single one")
	return cmd
}

func runSelect(path, query string) error {
	sel, err := selection.Parse(query)
	if err != nil {
		return err
	}

	traj, err := chemfiles.Open(path, iostack.Read, inputFormat)
	if err != nil {
		return err
	}
	defer traj.Close()

	if !allSteps {
		var frame chem.Frame
		if err := traj.ReadStep(step, &frame); err != nil {
			return err
		}
		return printMatches(step, sel, &frame)
	}

	n, err := traj.NSteps()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var frame chem.Frame
		if err := traj.ReadStep(i, &frame); err != nil {
			return err
		}
		if err := printMatches(i, sel, &frame); err != nil {
			return err
		}
	}
	return nil
}

func printMatches(step int, sel *selection.Selection, frame *chem.Frame) error {
	matches, err := sel.Evaluate(frame)
	if err != nil {
		return err
	}
	fmt.Printf("step %d: %d match(es)\n", step, len(matches))
	for _, m := range matches {
		fmt.Printf("  %v\n", m.Slice())
	}
	return nil
}
