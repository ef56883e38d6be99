package app_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/annosplit/internal/app"
	"github.com/specialistvlad/annosplit/internal/testutil"
	"github.com/stretchr/testify/require"
)

// fixture describes the files a pipeline test starts from.
type fixture struct {
	// Inputs maps an input file name to its number of records. Names ending
	// in .gz are gzip-compressed.
	Inputs map[string]int
	// Sidecars lists index files (e.g. "A.vcf.gz.tbi") created next to the
	// inputs.
	Sidecars []string
	// Configs lists configuration file names.
	Configs []string
}

// harnessResult holds the outcomes of a pipeline test run.
type harnessResult struct {
	LogOutput string
	Err       error
	Result    *app.Result
	Config    *app.Config
	Commander *testutil.FakeCommander
	Root      string
}

// OutputDir returns the directory outputs are written to.
func (r *harnessResult) OutputDir() string { return r.Config.OutputDir }

// runPipeline provides a standardized harness for running the whole pipeline
// against fake tools using a default background context.
func runPipeline(t *testing.T, fx fixture, configure func(*app.Config), opts ...app.Option) *harnessResult {
	t.Helper()
	return runPipelineWithContext(context.Background(), t, fx, configure, opts...)
}

// runPipelineWithContext is runPipeline with a caller-provided context.
// configure may adjust the configuration before it is validated.
func runPipelineWithContext(ctx context.Context, t *testing.T, fx fixture, configure func(*app.Config), opts ...app.Option) *harnessResult {
	t.Helper()

	// 1. Lay out inputs, configurations and tool definitions.
	root := t.TempDir()
	inputDir := filepath.Join(root, "inputs")
	configDir := filepath.Join(root, "configs")
	require.NoError(t, os.MkdirAll(inputDir, 0o755))
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	for name, records := range fx.Inputs {
		testutil.WriteVCF(t, filepath.Join(inputDir, name), records)
	}
	for _, name := range fx.Sidecars {
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, name), nil, 0o644))
	}
	for _, name := range fx.Configs {
		require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte("# "+name+"\n"), 0o644))
	}
	toolsPath := filepath.Join(root, "tools.hcl")
	require.NoError(t, os.WriteFile(toolsPath, []byte(testutil.FakeToolsHCL), 0o644))

	// 2. Configure the app to use the dedicated, non-overlapping subdirectories.
	raw := app.Config{
		InputPath:  inputDir,
		ConfigPath: configDir,
		OutputDir:  filepath.Join(root, "out"),
		WorkDir:    filepath.Join(root, "work"),
		ToolsPath:  toolsPath,
		CPUs:       4,
		LogLevel:   "debug",
		LogFormat:  "text",
	}
	if configure != nil {
		configure(&raw)
	}
	cfg, err := app.NewConfig(raw)
	require.NoError(t, err)

	// 3. Run with fake tools unless the caller overrides the commander.
	cmd := &testutil.FakeCommander{Handlers: testutil.FakeHandlers()}
	opts = append([]app.Option{app.WithCommander(cmd), app.WithWorkingDir(root)}, opts...)

	logBuffer := &testutil.SafeBuffer{}
	result := &harnessResult{Config: cfg, Commander: cmd, Root: root}

	testApp, err := app.NewApp(ctx, logBuffer, cfg, opts...)
	if err == nil {
		result.Result, err = testApp.Run(ctx)
	}
	result.Err = err
	result.LogOutput = logBuffer.String()

	if os.Getenv("ANNOSPLIT_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}

// assertTaskRan checks the log output within a harnessResult to confirm that
// the task with the given address finished. It matches on the logged task
// address rather than on any file name.
func assertTaskRan(t *testing.T, result *harnessResult, address string) {
	t.Helper()

	var found bool
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if strings.Contains(line, fmt.Sprintf("task=%s", address)) && strings.Contains(line, "Task finished.") {
			found = true
			break
		}
	}
	require.True(t, found, "expected log output for task '%s' was not found in logs", address)
}
