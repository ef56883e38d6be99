package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/stage"
	"github.com/specialistvlad/annosplit/internal/toolconf"
)

// Stages are the collaborators the pipeline delegates file work to. Nil
// fields are filled with the default implementations.
type Stages struct {
	Preparer  stage.Preparer
	Splitter  stage.Splitter
	Extractor stage.Extractor
	Annotator stage.Annotator
	Merger    stage.Merger
}

// Option customizes an App.
type Option func(*App)

// WithStages overrides some or all of the default stages.
func WithStages(s Stages) Option {
	return func(a *App) { a.stages = s }
}

// WithCommander sets how the default stages run external tools.
func WithCommander(cmd stage.Commander) Option {
	return func(a *App) { a.commander = cmd }
}

// WithWorkingDir sets the directory relative paths are resolved against.
func WithWorkingDir(dir string) Option {
	return func(a *App) { a.workingDir = dir }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(a *App) { a.newRunID = func() string { return id } }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	tools      *toolconf.Set
	stages     Stages
	commander  stage.Commander
	workingDir string
	newRunID   func() string
	progress   *Progress
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It configures an
// isolated logger and loads the tool definitions.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	app := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		newRunID: uuid.NewString,
		progress: newProgress(),
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		app.workingDir = wd
	}
	if app.commander == nil {
		app.commander = stage.ExecCommander{}
	}

	tools, err := toolconf.Load(ctx, cfg.ToolsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool definitions: %w", err)
	}
	app.tools = tools
	logger.Debug("Tool definitions loaded.", "tools", tools.Names())

	return app, nil
}

// defaultStages fills the unset stages for a run writing under workDir.
func (app *App) defaultStages(workDir string) Stages {
	s := app.stages
	if s.Preparer == nil {
		s.Preparer = stage.NewToolPreparer(app.tools, app.commander, workDir)
	}
	if s.Splitter == nil {
		s.Splitter = stage.VCFSplitter{}
	}
	if s.Extractor == nil {
		s.Extractor = stage.VCFExtractor{}
	}
	if s.Annotator == nil {
		// Parse guarantees the annotate tool exists.
		tool, _ := app.tools.Get(toolconf.Annotate)
		s.Annotator = stage.NewToolAnnotator(tool, app.commander)
	}
	if s.Merger == nil {
		s.Merger = stage.NewVCFMerger(app.tools, app.commander, workDir)
	}
	return s
}
