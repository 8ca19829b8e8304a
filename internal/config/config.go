package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/harunnryd/studioport/internal/pathutil"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server     ServerConfig     `koanf:"server" yaml:"server"`
	Generation GenerationConfig `koanf:"generation" yaml:"generation"`
	Render     RenderConfig     `koanf:"render" yaml:"render"`
	Output     OutputConfig     `koanf:"output" yaml:"output"`
	Batch      BatchConfig      `koanf:"batch" yaml:"batch"`
}

type ServerConfig struct {
	Port            int    `koanf:"port" yaml:"port"`
	LogLevel        string `koanf:"log_level" yaml:"log_level"`
	ReadTimeout     string `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64  `koanf:"max_body_bytes" yaml:"max_body_bytes"`
}

// GenerationConfig values are copied into the request without interpretation.
type GenerationConfig struct {
	Temperature float64 `koanf:"temperature" yaml:"temperature"`
	TopP        float64 `koanf:"top_p" yaml:"top_p"`
	ToolChoice  string  `koanf:"tool_choice" yaml:"tool_choice"`
}

type RenderConfig struct {
	Endpoint  string `koanf:"endpoint" yaml:"endpoint"`
	APIKeyEnv string `koanf:"api_key_env" yaml:"api_key_env"`
	CurlArgs  string `koanf:"curl_args" yaml:"curl_args"`
	Indent    string `koanf:"indent" yaml:"indent"`
}

type OutputConfig struct {
	Dir         string `koanf:"dir" yaml:"dir"`
	LockTimeout string `koanf:"lock_timeout" yaml:"lock_timeout"`
}

type BatchConfig struct {
	Concurrency int `koanf:"concurrency" yaml:"concurrency"`
}

const (
	DefaultServerPort            = 8088
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "10s"
	DefaultServerWriteTimeout    = "10s"
	DefaultServerIdleTimeout     = "60s"
	DefaultServerShutdownTimeout = "5s"
	DefaultServerMaxBodyBytes    = 8 << 20

	DefaultGenerationTemperature = 0.1
	DefaultGenerationTopP        = 0.1
	DefaultGenerationToolChoice  = "auto"

	DefaultRenderEndpoint  = "https://api.openai.com/v1/chat/completions"
	DefaultRenderAPIKeyEnv = "OPENAI_API_KEY"
	DefaultRenderCurlArgs  = ""
	DefaultRenderIndent    = "  "

	DefaultOutputDir         = "./studioport-out"
	DefaultOutputLockTimeout = "2s"

	DefaultBatchConcurrency = 4
)

const envPrefix = "STUDIOPORT_"

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":             DefaultServerPort,
		"server.log_level":        DefaultServerLogLevel,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.idle_timeout":     DefaultServerIdleTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"server.max_body_bytes":   DefaultServerMaxBodyBytes,
		"generation.temperature":  DefaultGenerationTemperature,
		"generation.top_p":        DefaultGenerationTopP,
		"generation.tool_choice":  DefaultGenerationToolChoice,
		"render.endpoint":         DefaultRenderEndpoint,
		"render.api_key_env":      DefaultRenderAPIKeyEnv,
		"render.curl_args":        DefaultRenderCurlArgs,
		"render.indent":           DefaultRenderIndent,
		"output.dir":              DefaultOutputDir,
		"output.lock_timeout":     DefaultOutputLockTimeout,
		"batch.concurrency":       DefaultBatchConcurrency,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		expanded, err := pathutil.Expand(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(expanded), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".studioport", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables: STUDIOPORT_GENERATION__TOOL_CHOICE -> generation.tool_choice
	k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	if cfg.Batch.Concurrency < 1 {
		cfg.Batch.Concurrency = 1
	}

	return &cfg, nil
}

func normalizePathFields(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	outputDir, err := expandConfiguredPath(cfg.Output.Dir)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	return nil
}

func expandConfiguredPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	expanded, err := pathutil.Expand(trimmed)
	if err != nil {
		return "", err
	}
	return expanded, nil
}
