package model

import (
	"fmt"
	"strings"
	"time"
)

// Phase is an ordered pipeline stage. Jobs in a phase may only reference
// artifacts produced by earlier phases; the orchestrator runs phases strictly
// in sequence, so a phase never starts before its predecessors' artifacts
// exist.
type Phase int

const (
	PhaseSceneCompile Phase = iota
	PhaseAmbientWarm
	PhaseConditionCompile
	PhaseRender
	PhaseComposite
	PhaseConvert
)

var phaseNames = map[Phase]string{
	PhaseSceneCompile:     "scene-compile",
	PhaseAmbientWarm:      "ambient-warm",
	PhaseConditionCompile: "condition-compile",
	PhaseRender:           "render",
	PhaseComposite:        "composite",
	PhaseConvert:          "convert",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Phases returns all pipeline stages in execution order.
func Phases() []Phase {
	return []Phase{
		PhaseSceneCompile,
		PhaseAmbientWarm,
		PhaseConditionCompile,
		PhaseRender,
		PhaseComposite,
		PhaseConvert,
	}
}

// Invocation is one fully serialized external command. It is derived from a
// typed JobSpec only at the execution boundary; nothing upstream of the
// engine handles command strings.
type Invocation struct {
	Program string
	Args    []string
	// Stdout is the file the command's stdout is redirected to. Empty means
	// the command produces its output artifact itself and stdout is discarded.
	Stdout string
}

func (inv Invocation) String() string {
	s := inv.Program + " " + strings.Join(inv.Args, " ")
	if inv.Stdout != "" {
		s += " > " + inv.Stdout
	}
	return s
}

// JobSpec carries the typed parameters of one phase's external invocation.
type JobSpec interface {
	Invocation() Invocation
}

// Job describes one planned external invocation with a declared output
// artifact. Jobs are created by the planner, consumed by the engine, and
// never persisted beyond the artifact they produce.
type Job struct {
	Phase  Phase
	Output string
	Inputs []string
	Spec   JobSpec
}

// JobResult reports the outcome of one executed job.
type JobResult struct {
	Job      Job
	Success  bool
	ExitCode int
	Err      error
	Duration time.Duration
}

// JobsInPhase selects the jobs belonging to one phase, preserving order.
func JobsInPhase(jobs []Job, phase Phase) []Job {
	var out []Job
	for _, j := range jobs {
		if j.Phase == phase {
			out = append(out, j)
		}
	}
	return out
}
