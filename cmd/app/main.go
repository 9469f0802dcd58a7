// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/sessiontoken/cmd/app/commands"
)

func main() {
	cmd := &cli.Command{
		Name:    "sessiontoken",
		Usage:   "Authenticated session token transform",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "keygen",
				Usage: "Generate encryption and signing keys",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "cipher-algorithm",
						Aliases: []string{"c"},
						Value:   "aes-256-cbc",
						Usage:   "Cipher algorithm (aes-128-cbc, aes-192-cbc or aes-256-cbc)",
					},
					&cli.StringFlag{
						Name:    "mac-algorithm",
						Aliases: []string{"m"},
						Value:   "hmac-sha256",
						Usage:   "MAC algorithm (hmac-sha256 or hmac-sha512)",
					},
					&cli.StringFlag{
						Name:    "master-secret",
						Aliases: []string{"s"},
						Value:   "",
						Usage:   "Base64 master secret for deterministic HKDF derivation (omit for random keys)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunKeygen(
						os.Stdout,
						cmd.String("cipher-algorithm"),
						cmd.String("mac-algorithm"),
						cmd.String("master-secret"),
					)
				},
			},
			{
				Name:  "encode",
				Usage: "Encode a plaintext payload into a transport token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "payload",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Payload to encode ('-' reads from stdin)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunEncode(ctx, commands.DefaultIO(), cmd.String("payload"))
				},
			},
			{
				Name:  "decode",
				Usage: "Decode a transport token back into its payload",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Token to decode ('-' reads from stdin)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDecode(ctx, commands.DefaultIO(), cmd.String("token"))
				},
			},
			{
				Name:  "bench",
				Usage: "Run concurrent encode/decode round trips and report throughput",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Value:   0,
						Usage:   "Number of concurrent workers (0 uses BENCH_WORKERS)",
					},
					&cli.IntFlag{
						Name:    "iterations",
						Aliases: []string{"i"},
						Value:   0,
						Usage:   "Round trips per worker (0 uses BENCH_ITERATIONS)",
					},
					&cli.FloatFlag{
						Name:    "rate",
						Aliases: []string{"r"},
						Value:   0,
						Usage:   "Aggregate round trips per second (0 uses BENCH_RATE_PER_SEC, which defaults to unlimited)",
					},
					&cli.StringFlag{
						Name:    "payload",
						Aliases: []string{"p"},
						Value:   "bench-payload",
						Usage:   "Payload used for every round trip",
					},
					&cli.BoolFlag{
						Name:  "serve-metrics",
						Value: false,
						Usage: "Expose the Prometheus endpoint while the bench runs",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunBench(
						ctx,
						commands.DefaultIO(),
						cmd.Int("workers"),
						cmd.Int("iterations"),
						cmd.Float("rate"),
						cmd.String("payload"),
						cmd.Bool("serve-metrics"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
