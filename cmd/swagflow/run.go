package main

import (
	"context"
	"errors"
	"fmt"

	"swagflow/internal/application/port/output"
	"swagflow/internal/infrastructure/config"
	"swagflow/internal/infrastructure/demostore"
	"swagflow/internal/usecase/scenario"

	"github.com/spf13/cobra"
)

var errScenariosFailed = errors.New("scenarios failed")

type runFlags struct {
	parallel  int
	artifacts string
	demo      bool
	noReport  bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios (all of them when none are named)",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, sc := range scenario.Catalog() {
				names = append(names, sc.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, root, flags, args)
		},
	}

	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 0, "scenarios run at once, each with its own browser")
	cmd.Flags().StringVar(&flags.artifacts, "artifacts", "", "directory for screenshots, DOM snapshots and the JSON report")
	cmd.Flags().BoolVar(&flags.demo, "demo", false, "run against the built-in demo store instead of base-url")
	cmd.Flags().BoolVar(&flags.noReport, "no-report", false, "skip writing the JSON report")
	return cmd
}

func runScenarios(cmd *cobra.Command, root *rootFlags, flags *runFlags, args []string) error {
	scenarios, err := scenario.Select(scenario.Catalog(), args)
	if err != nil {
		return err
	}

	c, err := root.container(cmd, func(cfg *config.Config) {
		if flags.parallel > 0 {
			cfg.Parallel = flags.parallel
		}
		if flags.artifacts != "" {
			cfg.ArtifactsDir = flags.artifacts
		}
	})
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if flags.demo {
		stopStore, err := startDemoStore(ctx, c.Logger, demostore.Options{}, c.UseBaseURL)
		if err != nil {
			return err
		}
		defer stopStore()
	}

	summary, runErr := c.NewRunner().Run(ctx, scenarios)
	c.Console.PrintSummary(summary)

	if !flags.noReport {
		path, err := c.Reporter.WriteJSON()
		if err != nil {
			c.Logger.Error("failed to write report", "error", err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", path)
		}
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, summary.Failed, summary.Total)
	}
	return nil
}

// startDemoStore serves the demo store on a free local port and hands its
// URL to use. The returned func stops the store and waits for it.
func startDemoStore(ctx context.Context, log output.LoggerPort, opts demostore.Options, use func(baseURL string)) (func(), error) {
	store, err := demostore.New(opts, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- store.Serve(ctx, "127.0.0.1:0", func(baseURL string) { ready <- baseURL })
	}()

	select {
	case baseURL := <-ready:
		use(baseURL)
	case err := <-done:
		cancel()
		return nil, fmt.Errorf("start demo store: %w", err)
	}

	return func() {
		cancel()
		if err := <-done; err != nil {
			log.Warn("demo store did not stop cleanly", "error", err)
		}
	}, nil
}
