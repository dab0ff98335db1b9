package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vincentlogarzo/archilume/internal/pipeline"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Score rendered images against analysis regions",
	Long:  "Count passing pixels per region for every rendered image, write per-region result files, and produce the flat and pivot compliance reports.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAggregate()
	},
}

func registerAggregateCommand(root *cobra.Command) {
	root.AddCommand(aggregateCmd)
}

func runAggregate() error {
	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("□ Aggregating project %s\n", cfg.Project)
	flat, pivot, err := pipeline.New(cfg, log).Aggregate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Flat report:  %s\n", flat)
	fmt.Printf("✓ Pivot report: %s\n", pivot)
	return nil
}
