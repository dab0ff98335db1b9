package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vincentlogarzo/archilume/internal/artifact"
	"github.com/vincentlogarzo/archilume/internal/model"
	"github.com/vincentlogarzo/archilume/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the job set without executing it",
	Long:  "Expand the configured skies and viewpoints into the full job set and list it per phase. Jobs whose output already exists are marked as skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPlan()
	},
}

func registerPlanCommand(root *cobra.Command) {
	root.AddCommand(planCmd)

	planCmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Show full command lines")
}

func listPlan() error {
	cfg, log, err := loadProject()
	if err != nil {
		return err
	}
	defer log.Sync()

	jobs, err := pipeline.New(cfg, log).Plan()
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("✓ Nothing to do: no sky conditions or viewpoints found")
		return nil
	}

	total, skipped := 0, 0
	for _, phase := range model.Phases() {
		phaseJobs := model.JobsInPhase(jobs, phase)
		if len(phaseJobs) == 0 {
			continue
		}
		fmt.Printf("\n[%s] %d jobs\n", phase, len(phaseJobs))
		for _, j := range phaseJobs {
			total++
			mark := " "
			if artifact.Exists(j.Output) {
				mark = "="
				skipped++
			}
			if longFormat {
				fmt.Printf("  %s %s\n      %s\n", mark, j.Output, j.Spec.Invocation())
			} else {
				fmt.Printf("  %s %s\n", mark, j.Output)
			}
		}
	}

	fmt.Printf("\n✓ %d jobs planned, %d already up to date\n", total, skipped)
	return nil
}
