package main

import (
	"fmt"
	"strings"

	"github.com/harunnryd/studioport/internal/batch"
	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/output"
	"github.com/harunnryd/studioport/internal/render"

	"github.com/spf13/cobra"
)

var batchOutDir string

var batchCmd = &cobra.Command{
	Use:   "batch MANIFEST",
	Short: "Convert every job listed in a YAML manifest",
	Long: `Batch converts each job in the manifest concurrently and writes its
artifacts to a subdirectory of the output directory named after the job.
The command fails when any job fails; jobs whose transcript yields no
messages are reported as empty.`,
	Example: `  studioport batch jobs.yaml --out ./requests`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args[0], batchOutDir)
	},
}

func runBatch(cmd *cobra.Command, manifestPath, outDir string) error {
	loadedCfg, err := loadConfigForCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manifest, err := batch.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	if strings.TrimSpace(outDir) == "" {
		outDir = loadedCfg.Output.Dir
	}
	lockTimeout, err := config.DurationOrDefault(loadedCfg.Output.LockTimeout, config.DefaultOutputLockTimeout)
	if err != nil {
		return fmt.Errorf("parse output lock timeout: %w", err)
	}

	handler := NewSignalHandler(commandContext(cmd))
	handler.Start()
	defer handler.Stop()
	ctx := handler.Context()

	w, err := output.Open(ctx, outDir, lockTimeout)
	if err != nil {
		return err
	}
	defer w.Close()

	runner := batch.NewRunner(paramsFromConfig(loadedCfg), factoryFromConfig(loadedCfg), w, loadedCfg.Batch.Concurrency)
	outcomes, err := runner.Run(ctx, manifest)
	table := render.NewTableFormatter()
	fmt.Fprintln(cmd.OutOrStdout(), table.FormatJobs(batch.Rows(outcomes)))
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	if failed := batch.Failed(outcomes); failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(outcomes))
	}
	fmt.Fprintln(cmd.ErrOrStderr(), table.DoneLine(fmt.Sprintf("Converted %d jobs into %s", len(outcomes), w.Dir())))
	return nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "", "output directory (default is output.dir from config)")
	rootCmd.AddCommand(batchCmd)
}
