package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/scribe/internal/inference"
)

// Config represents the scribe configuration file
// ($XDG_CONFIG_HOME/scribe/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	// Model
	Tokenizer        string `yaml:"tokenizer"`
	Vocab            *int64 `yaml:"vocab"`
	Hidden           *int64 `yaml:"hidden"`
	ModelSeed        *int64 `yaml:"model_seed"`
	Weights          string `yaml:"weights"`
	GenerationConfig string `yaml:"generation_config"`

	// Decoding defaults
	Strategy          string   `yaml:"strategy"`
	Device            string   `yaml:"device"`
	Temperature       *float64 `yaml:"temperature"`
	TopK              *int64   `yaml:"top_k"`
	TopP              *float64 `yaml:"top_p"`
	RepetitionPenalty *float64 `yaml:"repetition_penalty"`
	Seed              *int64   `yaml:"seed"`
	Steps             *int64   `yaml:"steps"`
	MaxLength         *int64   `yaml:"max_length"`
	MinLength         *int64   `yaml:"min_length"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scribe", "config.yaml")
}

// LoadConfig reads path, or the default location when path is empty. A
// missing default file yields a zero Config; a missing explicit file and a
// malformed file are errors.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyModelConfig applies config file defaults to the model flags when the
// corresponding CLI flag was not explicitly set.
func applyModelConfig(c *cli.Command, cfg Config) {
	if cfg.Tokenizer != "" && !c.IsSet("tokenizer") {
		tokenizerSpec = cfg.Tokenizer
	}
	if cfg.Vocab != nil && !c.IsSet("vocab") {
		vocabSize = *cfg.Vocab
	}
	if cfg.Hidden != nil && !c.IsSet("hidden") {
		hiddenSize = *cfg.Hidden
	}
	if cfg.ModelSeed != nil && !c.IsSet("model-seed") {
		modelSeed = *cfg.ModelSeed
	}
	if cfg.Weights != "" && !c.IsSet("weights") {
		weightsPath = cfg.Weights
	}
	if cfg.GenerationConfig != "" && !c.IsSet("generation-config") {
		generationConfig = cfg.GenerationConfig
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr, device *string) {
	applyModelConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.Device != "" && !c.IsSet("device") {
		*device = cfg.Device
	}
}

// serverDefaults layers the config file's decoding settings over the model's
// own defaults. They apply to requests that leave a field unset.
func serverDefaults(cfg Config, model inference.GenDefaults, device string) inference.GenDefaults {
	out := model
	if device != "" {
		out.Device = &device
	}
	if cfg.Strategy != "" {
		sample := cfg.Strategy == inference.StrategySample
		out.DoSample = &sample
	}
	if cfg.Temperature != nil {
		out.Temperature = cfg.Temperature
	}
	if cfg.TopK != nil {
		k := int(*cfg.TopK)
		out.TopK = &k
	}
	if cfg.TopP != nil {
		out.TopP = cfg.TopP
	}
	if cfg.RepetitionPenalty != nil {
		out.RepetitionPenalty = cfg.RepetitionPenalty
	}
	if cfg.MaxLength != nil {
		n := int(*cfg.MaxLength)
		out.MaxLength = &n
	}
	return out
}
