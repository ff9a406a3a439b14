package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-sync-shopify-layer/internal/application"
	"catalog-sync-shopify-layer/internal/bootstrap"
	"catalog-sync-shopify-layer/internal/config"
	"catalog-sync-shopify-layer/internal/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "synccli",
		Usage: "run catalog syncs against the stored shop credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level (debug, info, warn, error)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "sync one shop using its stored credentials and access token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "shop", Required: true, Usage: "shop domain"},
					&cli.DurationFlag{Name: "timeout", Value: 10 * time.Minute, Usage: "abort the pass after this long"},
				},
				Action: runSync,
			},
			{
				Name:   "list",
				Usage:  "list shops with stored credentials",
				Action: runList,
			},
			{
				Name:  "runs",
				Usage: "print the latest sync reports of a shop",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "shop", Required: true, Usage: "shop domain"},
				},
				Action: runRuns,
			},
		},
	}
}

func withContainer(ctx context.Context, cmd *cli.Command, fn func(*bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(os.Stderr, cmd.String("log-level"))

	container, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer container.Close(context.Background())
	return fn(container)
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	return withContainer(ctx, cmd, func(c *bootstrap.Container) error {
		ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
		defer cancel()

		report, err := c.Sync.SyncShop(ctx, cmd.String("shop"), application.TriggerCLI)
		if report != nil {
			if encErr := printJSON(report); encErr != nil {
				return encErr
			}
		}
		return err
	})
}

func runList(ctx context.Context, cmd *cli.Command) error {
	return withContainer(ctx, cmd, func(c *bootstrap.Container) error {
		all, err := c.Credentials.ListCredentials(ctx)
		if err != nil {
			return err
		}
		for _, creds := range all {
			fmt.Printf("%s\t%s\tautoSync=%t\n", creds.Shop, creds.APIURL, creds.CanAutoSync())
		}
		return nil
	})
}

func runRuns(ctx context.Context, cmd *cli.Command) error {
	return withContainer(ctx, cmd, func(c *bootstrap.Container) error {
		runs, err := c.Sync.ListRuns(ctx, cmd.String("shop"))
		if err != nil {
			return err
		}
		return printJSON(runs)
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
