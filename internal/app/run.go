package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/executor"
	"github.com/specialistvlad/annosplit/internal/fsutil"
	"github.com/specialistvlad/annosplit/internal/manifest"
	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/plan"
	"github.com/specialistvlad/annosplit/internal/reduce"
	"github.com/specialistvlad/annosplit/internal/stage"
	"golang.org/x/sync/errgroup"
)

// Result summarizes a finished run.
type Result struct {
	RunID   string
	WorkDir string
	Tasks   int
	Outputs []string
}

// Run executes the annotation pipeline: discover, validate, prepare, resolve
// metadata, plan, dispatch, and merge each output as soon as all of its
// splits are annotated.
func (app *App) Run(ctx context.Context) (*Result, error) {
	runID := app.newRunID()
	ctx = ctxlog.WithLogger(ctx, app.logger.With("run", runID))
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	app.progress.start(runID)
	if err := app.healthCheckServer(ctx); err != nil {
		return nil, err
	}
	defer app.closeHealthCheckServer(ctx)

	workRoot := app.config.WorkDir
	if !filepath.IsAbs(workRoot) {
		workRoot = filepath.Join(app.workingDir, workRoot)
	}
	workDir := filepath.Join(workRoot, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	rec := manifest.NewRecorder(runID, time.Now(), app.config.BinSize)

	res, err := app.run(ctx, workDir, rec)
	app.finish(ctx, workDir, rec, err)
	if err != nil {
		app.progress.setPhase(PhaseFailed)
		return nil, err
	}
	app.progress.setPhase(PhaseDone)
	res.RunID = runID
	res.WorkDir = workDir
	logger.Info("🏁 Run finished.", "tasks", res.Tasks, "outputs", len(res.Outputs))
	return res, nil
}

// finish writes the manifest and removes the work directory of a successful
// run unless it is to be kept.
func (app *App) finish(ctx context.Context, workDir string, rec *manifest.Recorder, runErr error) {
	logger := ctxlog.FromContext(ctx)
	rec.Finish(time.Now(), runErr)

	if runErr == nil && !app.config.KeepWorkDir {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("Could not remove work directory.", "path", workDir, "error", err)
		}
		return
	}

	path := filepath.Join(workDir, manifest.Filename)
	if err := rec.Write(path); err != nil {
		logger.Error("Could not write manifest.", "error", err)
		return
	}
	logger.Info("Work directory kept.", "path", workDir, "manifest", path)
}

func (app *App) run(ctx context.Context, workDir string, rec *manifest.Recorder) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := app.config
	stages := app.defaultStages(workDir)

	// --- Discovery and cardinality ---
	app.progress.setPhase(PhaseDiscovering)
	inputs, configs, err := app.discover(ctx)
	if err != nil {
		return nil, err
	}
	card, err := plan.Validate(inputs, configs)
	if err != nil {
		return nil, err
	}
	rec.SetCardinality(card.Inputs, card.Configs, card.Naming())
	logger.Info("Inputs discovered.", "inputs", card.Inputs, "configs", card.Configs, "naming", card.Naming())

	// Output names depend only on stems, so clashes are rejected before
	// preparation writes anything.
	resolver, err := plan.NewResolver(card, cfg.OutputDir, app.workingDir, nil)
	if err != nil {
		return nil, err
	}
	if err := reduce.CheckNames(cfg.Prefix, card.Naming(), resolver.OutputDir(), inputs, configs); err != nil {
		return nil, fmt.Errorf("%w: %w", plan.ErrConfiguration, err)
	}

	// --- Preparation ---
	originals := make([]string, len(inputs))
	for i, in := range inputs {
		originals[i] = in.Path
	}
	if cfg.SkipValidation {
		logger.Info("Input validation skipped.")
	} else {
		app.progress.setPhase(PhasePreparing)
		if inputs, err = app.prepare(ctx, stages.Preparer, inputs); err != nil {
			return nil, err
		}
	}

	// --- Metadata and planning ---
	app.progress.setPhase(PhasePlanning)
	pairings, err := resolver.Resolve(ctx, inputs, configs)
	if err != nil {
		return nil, err
	}
	planner, err := plan.NewPlanner(stages.Splitter, cfg.BinSize)
	if err != nil {
		return nil, err
	}
	tasks, err := planner.Plan(ctx, pairings)
	if err != nil {
		return nil, err
	}
	outputs, err := reduce.Outputs(cfg.Prefix, tasks, originals...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", plan.ErrConfiguration, err)
	}
	rec.SetPlan(tasks, outputs)
	reducer := reduce.New(tasks)
	app.progress.planned(len(tasks), reducer.Groups())
	logger.Info("Tasks planned.", "tasks", len(tasks), "outputs", reducer.Groups(), "bin_size", cfg.BinSize)

	if err := os.MkdirAll(resolver.OutputDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// --- Dispatch, reduction and merging ---
	app.progress.setPhase(PhaseAnnotating)
	runner := stage.NewTaskRunner(stages.Extractor, stages.Annotator, workDir, cfg.KeepWorkDir)
	exec := executor.New(runner, cfg.CPUs, cfg.TaskTimeout)

	sink := func(ctx context.Context, res model.TaskResult) error {
		rec.TaskDone(res)
		app.progress.taskDone()

		group, err := reducer.Add(res)
		if err != nil || group == nil {
			return err
		}
		dest := outputs[group.Key]
		if err := stages.Merger.Merge(ctx, group.Parts(), dest, group.Key.Metadata.Index); err != nil {
			return err
		}
		rec.OutputMerged(group.Key)
		app.progress.outputDone()
		ctxlog.FromContext(ctx).Info("Output written.", "output", dest, "splits", len(group.Results))
		return nil
	}

	logger.Info("🚀 Starting concurrent annotation...", "workers", cfg.CPUs)
	if err := exec.Execute(ctx, tasks, sink); err != nil {
		return nil, err
	}
	if err := reducer.Verify(); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(outputs))
	for _, path := range outputs {
		written = append(written, path)
	}
	sort.Strings(written)
	return &Result{Tasks: len(tasks), Outputs: written}, nil
}

// discover lists the inputs and configurations. A missing path is a
// configuration error.
func (app *App) discover(ctx context.Context) ([]model.InputFile, []model.ConfigFile, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := app.config

	inputPaths, err := discoverPaths(cfg.InputPath, cfg.InputGlob, app.workingDir)
	if err != nil {
		return nil, nil, fmt.Errorf("discovering inputs: %w", err)
	}
	configPaths, err := discoverPaths(cfg.ConfigPath, cfg.ConfigGlob, app.workingDir)
	if err != nil {
		return nil, nil, fmt.Errorf("discovering configurations: %w", err)
	}

	inputs := make([]model.InputFile, len(inputPaths))
	for i, p := range inputPaths {
		inputs[i] = model.InputFile{Path: p}
	}
	configs := make([]model.ConfigFile, len(configPaths))
	for i, p := range configPaths {
		configs[i] = model.ConfigFile{Path: p}
	}
	logger.Debug("Discovery finished.", "inputs", inputPaths, "configs", configPaths)
	return inputs, configs, nil
}

func discoverPaths(path, pattern, workingDir string) ([]string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDir, path)
	}
	paths, err := fsutil.Discover(path, pattern)
	if errors.Is(err, fsutil.ErrPathNotFound) {
		return nil, fmt.Errorf("%w: %w", plan.ErrConfiguration, err)
	}
	return paths, err
}

// prepare runs the preparer over every input, cfg.CPUs at a time. Order is
// preserved.
func (app *App) prepare(ctx context.Context, preparer stage.Preparer, inputs []model.InputFile) ([]model.InputFile, error) {
	prepared := make([]model.InputFile, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(app.config.CPUs)
	for i, in := range inputs {
		g.Go(func() error {
			out, err := preparer.Prepare(ctxlog.With(gctx, "input", in.Path), in)
			if err != nil {
				return fmt.Errorf("preparing %s: %w", in.Path, err)
			}
			prepared[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prepared, nil
}
