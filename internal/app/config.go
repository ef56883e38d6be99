package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/specialistvlad/annosplit/internal/plan"
)

// Default values applied by NewConfig.
const (
	DefaultInputGlob  = "*.vcf.gz"
	DefaultConfigGlob = "*.ini"
	DefaultOutputDir  = "."
)

// DefaultWorkDir is where per-run work directories are created.
func DefaultWorkDir() string {
	return filepath.Join(os.TempDir(), "annosplit")
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	InputPath  string // file or directory of VCF inputs
	ConfigPath string // file or directory of annotation configurations
	InputGlob  string
	ConfigGlob string

	BinSize     int
	CPUs        int
	TaskTimeout time.Duration

	OutputDir      string
	Prefix         string
	SkipValidation bool
	ToolsPath      string // HCL tool definitions; empty means built-in
	WorkDir        string
	KeepWorkDir    bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// InspectPath, when set, names a kept manifest or work directory to
	// summarize instead of running the pipeline.
	InspectPath string
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InspectPath != "" {
		return &cfg, nil
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("%w: an input path is required", plan.ErrConfiguration)
	}
	if cfg.ConfigPath == "" {
		return nil, fmt.Errorf("%w: a configuration path is required", plan.ErrConfiguration)
	}

	if cfg.InputGlob == "" {
		cfg.InputGlob = DefaultInputGlob
	}
	if cfg.ConfigGlob == "" {
		cfg.ConfigGlob = DefaultConfigGlob
	}
	for _, pattern := range []string{cfg.InputGlob, cfg.ConfigGlob} {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
	}

	if cfg.BinSize == 0 {
		cfg.BinSize = plan.DefaultBinSize
	}
	if cfg.BinSize < 1 {
		return nil, fmt.Errorf("bin size must be positive, got %d", cfg.BinSize)
	}
	if cfg.CPUs == 0 {
		cfg.CPUs = runtime.NumCPU()
	}
	if cfg.CPUs < 1 {
		return nil, fmt.Errorf("cpus must be positive, got %d", cfg.CPUs)
	}
	if cfg.TaskTimeout < 0 {
		return nil, fmt.Errorf("task timeout must not be negative, got %s", cfg.TaskTimeout)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir()
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port out of range: %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
