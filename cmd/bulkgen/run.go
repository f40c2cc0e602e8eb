package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hr-docgen-backend/config"
	"hr-docgen-backend/initializers"
	"hr-docgen-backend/lib/batch"
	"hr-docgen-backend/lib/generator"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one whole batch and print its progress",
	Long: `Reads the dataset and both experience pools, synthesizes the missing experience,
saves the updated dataset and assembles the documents of every candidate.

Flags override the generation section of config.yml for this run only.`,
	RunE: runBatchCmd,
}

var synthCommand = &cobra.Command{
	Use:   "synth",
	Short: "Only synthesize experience and save the updated dataset",
	RunE:  runSynthCmd,
}

var (
	runPDF     bool
	runMode    string
	runSeed    uint64
	runVerbose bool
)

func init() {
	runCommand.Flags().BoolVar(&runPDF, "pdf", false, "Convert the documents to PDF (config default when omitted)")
	runCommand.Flags().StringVarP(&runMode, "mode", "m", "", "merge | individual (config default when empty)")
	runCommand.Flags().Uint64Var(&runSeed, "seed", 0, "Random seed, 0 - config or clock")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print the process log to stderr")
	synthCommand.Flags().Uint64Var(&runSeed, "seed", 0, "Random seed, 0 - config or clock")
	synthCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print the process log to stderr")

	rootCmd.AddCommand(runCommand)
	rootCmd.AddCommand(synthCommand)
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	opts := generator.StartOptions{Mode: runMode, Seed: runSeed}
	if cmd.Flags().Changed("pdf") {
		opts.PDF = &runPDF
	}
	return execute(cmd, opts)
}

func runSynthCmd(cmd *cobra.Command, _ []string) error {
	return execute(cmd, generator.StartOptions{Seed: runSeed, SynthesisOnly: true})
}

func execute(cmd *cobra.Command, opts generator.StartOptions) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	initializers.InitAllServices(ctx)
	if !runVerbose {
		log.SetOutput(io.Discard)
	}
	log.WithField("output", config.Conf.Paths.OutputDir).Debug("offline batch")

	run, err := generator.Instance.Start(opts)
	if err != nil {
		return err
	}
	printLog(cmd.OutOrStdout(), run.Log)
	generator.Instance.Wait()

	status := run.Status()
	if status.State == batch.StateFailed {
		return errors.New(status.Reason)
	}
	return nil
}

// printLog copies progress lines to out until the log is closed.
func printLog(out io.Writer, l *batch.ProgressLog) {
	offset := 0
	for {
		lines, closed, err := l.Wait(context.Background(), offset)
		if err != nil {
			return
		}
		for _, line := range lines {
			fmt.Fprintln(out, line.Text)
		}
		offset += len(lines)
		if closed && len(lines) == 0 {
			return
		}
	}
}
