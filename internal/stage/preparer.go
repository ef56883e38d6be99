package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/fsutil"
	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/toolconf"
)

// fileFormatPrefix starts the first line of every VCF.
const fileFormatPrefix = "##fileformat=VCF"

// ToolPreparer checks that each input is a VCF, compresses plain inputs and
// builds a missing index. Derived files go into a per-input directory under
// workDir/prepared; inputs that are already compressed and indexed are used
// in place.
type ToolPreparer struct {
	compress *toolconf.Tool
	index    *toolconf.Tool
	cmd      Commander
	workDir  string
}

// NewToolPreparer creates a preparer. Without a compress tool plain inputs
// are compressed natively as BGZF.
func NewToolPreparer(tools *toolconf.Set, cmd Commander, workDir string) *ToolPreparer {
	if cmd == nil {
		cmd = ExecCommander{}
	}
	p := &ToolPreparer{cmd: cmd, workDir: workDir}
	if tools != nil {
		p.compress, _ = tools.Get(toolconf.Compress)
		p.index, _ = tools.Get(toolconf.Index)
	}
	return p
}

// Prepare implements Preparer.
func (p *ToolPreparer) Prepare(ctx context.Context, input model.InputFile) (model.InputFile, error) {
	logger := ctxlog.FromContext(ctx).With("input", input.Path)

	gz, err := checkVCF(input.Path)
	if err != nil {
		return model.InputFile{}, err
	}

	path := input.Path
	if !gz {
		path, err = p.compressInput(ctx, input)
		if err != nil {
			return model.InputFile{}, err
		}
		logger.Info("Input compressed.", "prepared", path)
	}

	if idx, err := findIndex(path); err != nil || idx != "" {
		return model.InputFile{Path: path, Index: idx}, err
	}

	if p.index == nil {
		return model.InputFile{}, fmt.Errorf("%s has no .tbi or .csi index and no index tool is configured", path)
	}
	// Indexes are written next to the data, so an input we did not create is
	// linked into the work directory first.
	if !strings.HasPrefix(path, p.preparedDir()+string(filepath.Separator)) {
		path, err = p.link(input)
		if err != nil {
			return model.InputFile{}, err
		}
	}
	if err := renderAndRun(ctx, p.cmd, p.index, indexVars(path, model.IndexTBI)); err != nil {
		return model.InputFile{}, fmt.Errorf("indexing %s: %w", input.Path, err)
	}
	idx, err := findIndex(path)
	if err != nil {
		return model.InputFile{}, err
	}
	if idx == "" {
		return model.InputFile{}, fmt.Errorf("index tool produced no index for %s", path)
	}
	logger.Info("Input indexed.", "index", idx)
	return model.InputFile{Path: path, Index: idx}, nil
}

func (p *ToolPreparer) preparedDir() string {
	return filepath.Join(p.workDir, "prepared")
}

// stagingDir creates a fresh directory under preparedDir for one input, so
// inputs sharing a base name or stem never share a destination.
func (p *ToolPreparer) stagingDir(input model.InputFile) (string, error) {
	if err := os.MkdirAll(p.preparedDir(), 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(p.preparedDir(), input.Stem()+"-")
}

func (p *ToolPreparer) compressInput(ctx context.Context, input model.InputFile) (string, error) {
	dir, err := p.stagingDir(input)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, input.Stem()+".vcf.gz")
	if p.compress != nil {
		if err := renderAndRun(ctx, p.cmd, p.compress, compressVars(input.Path, dest)); err != nil {
			return "", fmt.Errorf("compressing %s: %w", input.Path, err)
		}
		return dest, nil
	}

	err = writeBGZF(dest, func(w io.Writer) error {
		f, err := os.Open(input.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("compressing %s: %w", input.Path, err)
	}
	return dest, nil
}

func (p *ToolPreparer) link(input model.InputFile) (string, error) {
	dir, err := p.stagingDir(input)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, filepath.Base(input.Path))
	if err := os.Symlink(input.Path, dest); err != nil {
		return "", fmt.Errorf("linking %s into work directory: %w", input.Path, err)
	}
	return dest, nil
}

// findIndex returns the sidecar index of path, preferring .tbi, or "" when
// there is none.
func findIndex(path string) (string, error) {
	for _, t := range []model.IndexType{model.IndexTBI, model.IndexCSI} {
		ok, err := fsutil.Exists(path + t.Suffix())
		if err != nil {
			return "", err
		}
		if ok {
			return path + t.Suffix(), nil
		}
	}
	return "", nil
}

// checkVCF verifies that path starts with a VCF fileformat line and reports
// whether it is gzip-compressed.
func checkVCF(path string) (bool, error) {
	r, err := openVCF(path)
	if err != nil {
		return false, err
	}
	defer r.Close()

	line, err := r.next()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if !strings.HasPrefix(line, fileFormatPrefix) {
		return false, fmt.Errorf("%s is not a VCF file: missing %s header", path, fileFormatPrefix)
	}
	return r.zr != nil, nil
}
