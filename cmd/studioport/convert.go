package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/output"
	"github.com/harunnryd/studioport/internal/render"

	"github.com/spf13/cobra"
)

type convertOptions struct {
	inputPaths
	Format string
	OutDir string
}

var convertOpts convertOptions

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a tool list and transcript into a request",
	Long: `Convert reads a KeyStudio tool list and transcript and prints the
chat-completion request in the chosen format. With --out, the JSON body,
curl command and shell script are written to that directory instead.`,
	Example: `  studioport convert --tools tools.json --transcript chat.json
  cat chat.json | studioport convert --tools tools.json --transcript - --format json
  studioport convert --tools tools.json --transcript chat.json --out ./requests`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, convertOpts)
	},
}

func runConvert(cmd *cobra.Command, opts convertOptions) error {
	format, err := render.ParseOutputFormat(opts.Format)
	if err != nil {
		return err
	}

	loadedCfg, res, err := convertInputs(cmd, opts.inputPaths)
	if err != nil {
		return err
	}

	factory := factoryFromConfig(loadedCfg)
	table := render.NewTableFormatter()

	if strings.TrimSpace(opts.OutDir) != "" {
		lockTimeout, err := config.DurationOrDefault(loadedCfg.Output.LockTimeout, config.DefaultOutputLockTimeout)
		if err != nil {
			return fmt.Errorf("parse output lock timeout: %w", err)
		}

		artifacts, err := output.Build(factory, res)
		if err != nil {
			return err
		}

		w, err := output.Open(context.Background(), opts.OutDir, lockTimeout)
		if err != nil {
			return err
		}
		defer w.Close()

		paths, err := w.Write("", artifacts)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), table.StatusLine(res))
		for _, p := range paths {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", p)
		}
		return nil
	}

	r, err := factory.Create(format)
	if err != nil {
		return err
	}
	text, err := r.Render(res)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
	fmt.Fprintln(cmd.ErrOrStderr(), table.StatusLine(res))
	return nil
}

func addInputFlags(cmd *cobra.Command, in *inputPaths) {
	cmd.Flags().StringVar(&in.Tools, "tools", "", "tool list JSON file, or - for stdin")
	cmd.Flags().StringVar(&in.Transcript, "transcript", "", "transcript JSON file, or - for stdin")
}

func init() {
	addInputFlags(convertCmd, &convertOpts.inputPaths)
	convertCmd.Flags().StringVarP(&convertOpts.Format, "format", "f", string(render.OutputFormatCurl), "output format (curl, script, json, yaml)")
	convertCmd.Flags().StringVarP(&convertOpts.OutDir, "out", "o", "", "write request.json, request.curl.txt and request.sh into this directory")
	rootCmd.AddCommand(convertCmd)
}
