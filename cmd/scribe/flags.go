package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/inference"
)

var (
	tokenizerSpec    string
	vocabSize        int64
	hiddenSize       int64
	modelSeed        int64
	generationConfig string
	weightsPath      string
	logLevel         string
	logFormat        string
	debug            bool
	configFile       string

	appConfig Config
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tokenizer",
			Aliases:     []string{"encoding"},
			Usage:       "text codec: bytes, tiktoken:<encoding>, tiktoken-model:<model> or hf:<path to tokenizer.json>",
			Value:       "bytes",
			Destination: &tokenizerSpec,
		},
		&cli.Int64Flag{
			Name:        "vocab",
			Usage:       "scorer vocabulary size (0 = tokenizer vocabulary)",
			Destination: &vocabSize,
		},
		&cli.Int64Flag{
			Name:        "hidden",
			Usage:       "toy model hidden width",
			Value:       inference.DefaultHidden,
			Destination: &hiddenSize,
		},
		&cli.Int64Flag{
			Name:        "model-seed",
			Usage:       "seed for the toy model weights",
			Value:       1,
			Destination: &modelSeed,
		},
		&cli.StringFlag{
			Name:        "weights",
			Usage:       "safetensors file with toy model weights (see init-weights)",
			Destination: &weightsPath,
		},
		&cli.StringFlag{
			Name:        "generation-config",
			Usage:       "path to a generation_config.json supplying sampling defaults",
			Destination: &generationConfig,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Usage:       "path to config.yaml (default $XDG_CONFIG_HOME/scribe/config.yaml)",
		Destination: &configFile,
	}
}

func loader() inference.Loader {
	return inference.Loader{
		Tokenizer:            tokenizerSpec,
		Vocab:                int(vocabSize),
		Hidden:               int(hiddenSize),
		Seed:                 modelSeed,
		Weights:              weightsPath,
		GenerationConfigPath: generationConfig,
	}
}
