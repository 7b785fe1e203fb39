// Package main provides the voxconv CLI: benchmarking and gradient
// self-checking for the convolution engine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const version = "v0.1.0-dev"

func main() {
	app := &cli.Command{
		Name:  "voxconv",
		Usage: "3-D convolution-via-GEMM engine CLI",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			benchCmd(),
			gradcheckCmd(),
			{
				Name:  "version",
				Usage: "Show version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("voxconv %s\n", version)
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
