package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/logger"
)

func tokenizeCmd() *cli.Command {
	var (
		text string
		ids  string
	)

	return &cli.Command{
		Name:  "tokenize",
		Usage: "Convert text to token ids, or token ids back to text",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "text",
				Usage:       "text to tokenize",
				Destination: &text,
			},
			&cli.StringFlag{
				Name:        "decode",
				Usage:       "comma-separated token ids to convert back to text",
				Destination: &ids,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModelConfig(cmd, appConfig)
			loaded, err := loader().Load(logger.FromContext(ctx))
			if err != nil {
				return err
			}
			defer func() { _ = loaded.Engine.Close() }()

			if ids != "" {
				parsed, err := parseIDs(ids)
				if err != nil {
					return fmt.Errorf("--decode: %w", err)
				}
				out, err := loaded.Engine.Detokenize(parsed)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}

			out, err := loaded.Engine.Tokenize(text)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatIDs(out))
			fmt.Printf("count: %d\n", len(out))
			return nil
		},
	}
}
