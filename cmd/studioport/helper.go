package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harunnryd/studioport/internal/config"
	"github.com/harunnryd/studioport/internal/convert"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/pathutil"
	"github.com/harunnryd/studioport/internal/render"

	"github.com/spf13/cobra"
)

func loadConfigForCommand(cmd *cobra.Command) (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	loadedCfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	return loadedCfg, nil
}

func paramsFromConfig(c *config.Config) convert.Params {
	return convert.Params{
		Temperature: c.Generation.Temperature,
		TopP:        c.Generation.TopP,
		ToolChoice:  c.Generation.ToolChoice,
	}
}

func factoryFromConfig(c *config.Config) *render.FormatterFactory {
	return render.NewFormatterFactory(render.Options{
		Endpoint:  c.Render.Endpoint,
		APIKeyEnv: c.Render.APIKeyEnv,
		CurlArgs:  c.Render.CurlArgs,
		Indent:    c.Render.Indent,
	})
}

// inputPaths are the two documents a conversion reads. Either may be "-"
// for stdin, but not both.
type inputPaths struct {
	Tools      string
	Transcript string
}

func (p inputPaths) validate() error {
	if strings.TrimSpace(p.Tools) == "" {
		return spErrors.InvalidInput("--tools is required")
	}
	if strings.TrimSpace(p.Transcript) == "" {
		return spErrors.InvalidInput("--transcript is required")
	}
	if p.Tools == "-" && p.Transcript == "-" {
		return spErrors.InvalidInput("only one of --tools and --transcript can read stdin")
	}
	return nil
}

func (p inputPaths) read(stdin io.Reader) (tools, transcript []byte, err error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}
	if tools, err = readInput(p.Tools, stdin); err != nil {
		return nil, nil, fmt.Errorf("read tools: %w", err)
	}
	if transcript, err = readInput(p.Transcript, stdin); err != nil {
		return nil, nil, fmt.Errorf("read transcript: %w", err)
	}
	return tools, transcript, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	expanded, err := pathutil.Expand(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}

func convertInputs(cmd *cobra.Command, in inputPaths) (*config.Config, *convert.Result, error) {
	loadedCfg, err := loadConfigForCommand(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	toolsJSON, transcriptJSON, err := in.read(cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}

	res, err := convert.ConvertJSON(toolsJSON, transcriptJSON, paramsFromConfig(loadedCfg))
	if err != nil {
		return nil, nil, err
	}
	return loadedCfg, res, nil
}
