package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vincentlogarzo/archilume/internal/pipeline"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Execute all rendering phases",
	Long:  "Compile octrees, warm ambient caches, render every lighting condition and viewpoint, composite, and convert to TIFF. Artifacts that already exist are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender()
	},
}

func registerRenderCommand(root *cobra.Command) {
	root.AddCommand(renderCmd)
}

func runRender() error {
	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("□ Rendering project %s\n", cfg.Project)
	timings, err := pipeline.New(cfg, log).Render(ctx)
	for _, t := range timings {
		fmt.Printf("  %-18s planned=%d skipped=%d succeeded=%d failed=%d in %s\n",
			t.Phase, t.Planned, t.Skipped, t.Succeeded, t.Failed, t.Duration.Round(time.Millisecond))
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, t := range timings {
		failed += t.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d jobs failed", failed)
	}
	fmt.Println("✓ Rendering complete")
	return nil
}
