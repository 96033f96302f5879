// Package build turns a structured source tree into the flat layout the
// template engine loads from: every served file at the output root, no
// subdirectories holding scripts.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cpcf/gasket/config"
	"github.com/cpcf/gasket/metrics"
	"github.com/cpcf/gasket/postprocess"
	"github.com/cpcf/gasket/processors"
	"github.com/cpcf/gasket/write"
)

const (
	StepClean    = "clean"
	StepCompile  = "compile"
	StepManifest = "manifest"
	StepMarkup   = "markup"
	StepFlatten  = "flatten"
	StepStyles   = "styles"
	StepIncludes = "includes"
)

type Pipeline struct {
	cfg             config.BuildConfig
	root            string
	logger          *slog.Logger
	compiler        Compiler
	writer          write.Writer
	recorder        metrics.Recorder
	styleProcessors []postprocess.Processor
}

// Result describes one pipeline run. Names are relative to the output root.
type Result struct {
	Copied     []string
	Moved      []string
	Generated  []string
	Collisions []Collision
	Warnings   []string
	Steps      []StepTiming
	Duration   time.Duration
}

// Collision records a same-name file that replaced an earlier one.
type Collision struct {
	Name     string
	Kind     string
	Kept     string
	Replaced string
}

type StepTiming struct {
	Step     string
	Duration time.Duration
}

func New(cfg config.BuildConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		root:     ".",
		logger:   slog.Default(),
		writer:   write.NewFileWriter(),
		recorder: metrics.NoopRecorder{},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.compiler == nil {
		p.compiler = NewCommandCompiler(p.root, cfg.Compiler...)
	}

	return p
}

func (p *Pipeline) SourceDir() string {
	return filepath.Join(p.root, p.cfg.SourceDir)
}

func (p *Pipeline) OutputDir() string {
	return filepath.Join(p.root, p.cfg.OutputDir)
}

// Run executes every step in order. Clean, compile, and any failed copy or
// move abort the run; missing optional inputs only add warnings.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	state := &run{
		Pipeline: p,
		result:   &Result{},
		placed:   make(map[string]string),
	}

	p.logger.Info("starting build", "source", p.SourceDir(), "output", p.OutputDir())

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StepClean, state.clean},
		{StepCompile, state.compile},
		{StepManifest, state.copyManifest},
		{StepMarkup, state.copyMarkup},
		{StepFlatten, state.flatten},
		{StepStyles, state.synthesizeStyles},
		{StepIncludes, state.checkIncludes},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return p.fail(state.result, start, &StepError{Step: step.name, Err: err})
		}

		stepStart := time.Now()
		err := step.fn(ctx)
		elapsed := time.Since(stepStart)
		p.recorder.ObserveStepDuration(step.name, elapsed)
		state.result.Steps = append(state.result.Steps, StepTiming{Step: step.name, Duration: elapsed})

		if err != nil {
			return p.fail(state.result, start, &StepError{Step: step.name, Err: err})
		}
	}

	state.result.Duration = time.Since(start)
	p.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	p.logger.Info("build finished",
		"copied", len(state.result.Copied),
		"moved", len(state.result.Moved),
		"generated", len(state.result.Generated),
		"warnings", len(state.result.Warnings),
		"duration", state.result.Duration)

	return state.result, nil
}

func (p *Pipeline) fail(result *Result, start time.Time, err error) (*Result, error) {
	result.Duration = time.Since(start)
	p.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	return result, err
}

func (p *Pipeline) styleChain() *postprocess.Chain {
	chain := postprocess.NewChain(p.styleProcessors...)
	chain.Add(processors.NewStyleBlock())
	return chain
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("build %s -> %s", p.SourceDir(), p.OutputDir())
}
