package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/specialistvlad/annosplit/internal/app"
	"github.com/specialistvlad/annosplit/internal/plan"
)

// Exit codes returned by the annosplit binary.
const (
	ExitCodeOK      = 0
	ExitCodeFailure = 1
	ExitCodeUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly (only for -h), or
// an ExitError. A missing input or configuration path is a configuration
// error and exits with ExitCodeFailure.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("annosplit", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
annosplit - split, annotate and merge VCF files in parallel.

Usage:
  annosplit -i INPUT -c CONFIG [options]
  annosplit --inspect WORKDIR

Each input is split into bins of records, every bin is annotated with every
configuration it is paired with, and the annotated bins are merged into one
compressed, indexed output per (input, configuration) pair. Either one input
or one configuration must be given; several of both are rejected.

Options:
`)
		flagSet.PrintDefaults()
	}

	var raw app.Config
	flagSet.StringVar(&raw.InputPath, "input", "", "Input VCF file or directory of inputs.")
	flagSet.StringVar(&raw.InputPath, "i", "", "Input VCF file or directory (shorthand).")
	flagSet.StringVar(&raw.ConfigPath, "config", "", "Annotation configuration file or directory of configurations.")
	flagSet.StringVar(&raw.ConfigPath, "c", "", "Annotation configuration file or directory (shorthand).")
	flagSet.StringVar(&raw.InputGlob, "input-glob", app.DefaultInputGlob, "Glob selecting inputs when --input is a directory.")
	flagSet.StringVar(&raw.ConfigGlob, "config-glob", app.DefaultConfigGlob, "Glob selecting configurations when --config is a directory.")
	flagSet.IntVar(&raw.BinSize, "bin-size", plan.DefaultBinSize, "Maximum number of records per split.")
	flagSet.IntVar(&raw.BinSize, "b", plan.DefaultBinSize, "Maximum number of records per split (shorthand).")
	flagSet.IntVar(&raw.CPUs, "cpus", runtime.NumCPU(), "Number of splits annotated concurrently.")
	flagSet.IntVar(&raw.CPUs, "p", runtime.NumCPU(), "Number of splits annotated concurrently (shorthand).")
	flagSet.StringVar(&raw.OutputDir, "output-dir", app.DefaultOutputDir, "Directory for merged outputs.")
	flagSet.StringVar(&raw.OutputDir, "o", app.DefaultOutputDir, "Directory for merged outputs (shorthand).")
	flagSet.StringVar(&raw.Prefix, "prefix", "", "Prefix prepended to every output file name.")
	flagSet.BoolVar(&raw.SkipValidation, "skip-validation", false, "Use inputs as given, without checking, compressing or indexing them.")
	flagSet.StringVar(&raw.ToolsPath, "tools", "", "HCL file defining the annotate, compress and index tools. Built-in definitions are used when empty.")
	flagSet.StringVar(&raw.WorkDir, "workdir", app.DefaultWorkDir(), "Directory for per-run intermediate files.")
	flagSet.BoolVar(&raw.KeepWorkDir, "keep-workdir", false, "Keep intermediate files and the run manifest after a successful run.")
	flagSet.DurationVar(&raw.TaskTimeout, "task-timeout", 0, "Maximum duration of one split's annotation. 0 is unlimited.")
	flagSet.IntVar(&raw.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and progress server. 0 is disabled.")
	flagSet.StringVar(&raw.InspectPath, "inspect", "", "Summarize the manifest of a kept work directory and exit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitCodeUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: ExitCodeUsage, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}

	if raw.InputPath == "" && raw.ConfigPath == "" && raw.InspectPath == "" {
		slog.Debug("No input or configuration provided, printing usage.")
		flagSet.Usage()
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitCodeUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitCodeUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	raw.LogFormat = logFormat
	raw.LogLevel = logLevel
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(raw)
	if err != nil {
		code := ExitCodeUsage
		if errors.Is(err, plan.ErrConfiguration) {
			code = ExitCodeFailure
		}
		return nil, false, &ExitError{Code: code, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// ExitCode maps an error returned by a run to the process exit code. Usage
// errors keep their own code; every other failure is fatal with code 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCodeFailure
}
