package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/scribe/internal/device"
)

func devicesCmd() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List compute devices available to this build",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, d := range device.Available() {
				fmt.Println(d.String())
			}
			if f := device.HostFeatures(); len(f) > 0 {
				fmt.Printf("cpu features: %s\n", strings.Join(f, " "))
			}
			return nil
		},
	}
}
