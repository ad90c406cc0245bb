package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/logger"
	"github.com/samcharles93/scribe/internal/tokenizer"
)

func initWeightsCmd() *cli.Command {
	var out string

	return &cli.Command{
		Name:  "init-weights",
		Usage: "Write seeded toy model weights to a safetensors file",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path",
				Value:       "toy.safetensors",
				Destination: &out,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModelConfig(cmd, appConfig)
			codec, err := tokenizer.Open(tokenizerSpec)
			if err != nil {
				return err
			}
			scorer, err := loader().NewScorer(codec)
			if err != nil {
				return err
			}
			if err := scorer.Save(out); err != nil {
				return fmt.Errorf("write weights: %w", err)
			}
			logger.FromContext(ctx).Info("wrote weights",
				"path", out,
				"vocab", scorer.Vocab,
				"hidden", scorer.Hidden,
			)
			return nil
		},
	}
}
