package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/studioport/internal/config"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/logger"
	"github.com/harunnryd/studioport/internal/render"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "studioport",
	Short: "Convert KeyStudio transcripts into chat-completion requests",
	Long: `studioport turns a KeyStudio tool list and agent transcript into an
OpenAI-style chat-completion request, rendered as JSON, YAML, a curl
command or a runnable shell script.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.NewTableFormatter().FailLine(err.Error()))
		os.Exit(spErrors.ExitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.studioport/config.yaml)")
	flags.String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
	flags.Float64("generation.temperature", config.DefaultGenerationTemperature, "sampling temperature written into the request")
	flags.Float64("generation.top_p", config.DefaultGenerationTopP, "nucleus sampling value written into the request")
	flags.String("generation.tool_choice", config.DefaultGenerationToolChoice, "tool_choice written into the request")
	flags.String("render.endpoint", config.DefaultRenderEndpoint, "endpoint used by curl and script output")
	flags.String("render.api_key_env", config.DefaultRenderAPIKeyEnv, "environment variable holding the API key in curl and script output")
}
