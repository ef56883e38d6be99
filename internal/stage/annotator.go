package stage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/toolconf"
)

// ToolAnnotator runs the configured annotate tool once per task.
type ToolAnnotator struct {
	tool *toolconf.Tool
	cmd  Commander
}

// NewToolAnnotator creates an annotator. A nil cmd means ExecCommander.
func NewToolAnnotator(tool *toolconf.Tool, cmd Commander) *ToolAnnotator {
	if cmd == nil {
		cmd = ExecCommander{}
	}
	return &ToolAnnotator{tool: tool, cmd: cmd}
}

// Annotate implements Annotator.
func (a *ToolAnnotator) Annotate(ctx context.Context, task model.Task, splitPath, dest string) error {
	return renderAndRun(ctx, a.cmd, a.tool, TaskVars(task, splitPath, dest))
}

// TaskVars returns the variables visible to the annotate tool for one task.
func TaskVars(task model.Task, splitPath, dest string) toolconf.Vars {
	split := task.Split
	return toolconf.Vars{
		"split": {
			"path":  splitPath,
			"index": strconv.Itoa(split.Index),
			"start": strconv.FormatInt(split.Start, 10),
			"count": strconv.FormatInt(split.Count, 10),
		},
		"input": {
			"path":  split.Input.Path,
			"name":  split.Input.Stem(),
			"index": split.Input.Index,
		},
		"config": {
			"path": task.Config.Path,
			"name": task.Config.Stem(),
		},
		"output": {
			"path": dest,
			"dir":  task.Metadata.OutputDir,
		},
		"index": {
			"type": string(task.Metadata.Index),
		},
	}
}

// indexVars are the variables visible to the index tool.
func indexVars(path string, index model.IndexType) toolconf.Vars {
	return toolconf.Vars{
		"input": {"path": path},
		"index": {"type": string(index)},
	}
}

// compressVars are the variables visible to the compress tool.
func compressVars(src, dest string) toolconf.Vars {
	return toolconf.Vars{
		"input":  {"path": src},
		"output": {"path": dest},
	}
}

func renderAndRun(ctx context.Context, cmd Commander, tool *toolconf.Tool, vars toolconf.Vars) error {
	inv, err := tool.Render(vars)
	if err != nil {
		return err
	}
	if err := cmd.Run(ctx, inv); err != nil {
		return fmt.Errorf("tool %q: %w", tool.Name, err)
	}
	return nil
}
