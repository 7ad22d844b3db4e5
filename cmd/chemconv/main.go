// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : main.go

// Command chemconv is a thin example CLI converting a trajectory from
// one chemfiles-supported format to another, copying every step and
// optionally overriding the topology along the way.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cx-luo/chemfiles"
	"github.com/cx-luo/chemfiles/chem"
	"github.com/cx-luo/chemfiles/iostack"
)

var (
	inputFormat    string
	outputFormat   string
	topologyPath   string
	topologyFormat string
	configPath     string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chemconv <input> <output>",
		Short: "Convert a molecular trajectory between chemfiles-supported formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1])
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&inputFormat, "input-format", "", "format hint for the input file (default: guessed from extension)")
	flags.StringVar(&outputFormat, "output-format", "", "format hint for the output file (default: guessed from extension)")
	flags.StringVar(&topologyPath, "topology", "", "path to a file supplying a topology override applied to every frame")
	flags.StringVar(&topologyFormat, "topology-format", "", "format hint for --topology")
	flags.StringVar(&configPath, "config", "", "path to an ini configuration file applying atom-type renames")
	return cmd
}

func runConvert(inputPath, outputPath string) error {
	if configPath != "" {
		if err := chemfiles.AddConfiguration(configPath); err != nil {
			return err
		}
		defer chemfiles.ResetConfiguration()
	}

	input, err := chemfiles.Open(inputPath, iostack.Read, inputFormat)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := chemfiles.Open(outputPath, iostack.Write, outputFormat)
	if err != nil {
		return err
	}
	defer output.Close()

	if topologyPath != "" {
		if err := output.SetTopologyFromFile(topologyPath, topologyFormat); err != nil {
			return err
		}
	}

	var frame chem.Frame
	count := 0
	for {
		done, err := input.Done()
		if err != nil {
			return err
		}
		if done {
			break
		}
		if err := input.Read(&frame); err != nil {
			return err
		}
		if err := output.Write(&frame); err != nil {
			return err
		}
		count++
	}

	fmt.Printf("converted %d step(s): %s -> %s\n", count, inputPath, outputPath)
	return nil
}
