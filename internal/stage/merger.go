package stage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/toolconf"
)

// VCFMerger concatenates annotated parts into one compressed, indexed VCF.
type VCFMerger struct {
	compress *toolconf.Tool
	index    *toolconf.Tool
	cmd      Commander
	workDir  string
}

// NewVCFMerger creates a merger. Without a compress tool the output is
// written natively as BGZF; without an index tool no index is built.
// Intermediate files are placed under workDir.
func NewVCFMerger(tools *toolconf.Set, cmd Commander, workDir string) *VCFMerger {
	if cmd == nil {
		cmd = ExecCommander{}
	}
	m := &VCFMerger{cmd: cmd, workDir: workDir}
	if tools != nil {
		m.compress, _ = tools.Get(toolconf.Compress)
		m.index, _ = tools.Get(toolconf.Index)
	}
	return m
}

// Merge implements Merger. The header is taken from the first part; the
// records of every part follow in the order given. dest only appears once it
// is complete.
func (m *VCFMerger) Merge(ctx context.Context, parts []string, dest string, index model.IndexType) error {
	logger := ctxlog.FromContext(ctx).With("output", dest)
	if len(parts) == 0 {
		return fmt.Errorf("merging %s: no parts", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	partial := dest + ".partial"
	defer os.Remove(partial)

	var err error
	if m.compress != nil {
		err = m.mergeWithTool(ctx, parts, partial)
	} else {
		err = writeBGZF(partial, func(w io.Writer) error { return concatParts(ctx, parts, w) })
	}
	if err != nil {
		return fmt.Errorf("merging %s: %w", dest, err)
	}

	// A stale index next to the old file would describe the wrong data.
	for _, t := range []model.IndexType{model.IndexTBI, model.IndexCSI} {
		if err := os.Remove(dest + t.Suffix()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("publishing %s: %w", dest, err)
	}
	logger.Debug("Parts merged.", "parts", len(parts))

	if m.index == nil {
		logger.Warn("No index tool configured, output left unindexed.")
		return nil
	}
	if err := renderAndRun(ctx, m.cmd, m.index, indexVars(dest, index)); err != nil {
		return fmt.Errorf("indexing %s: %w", dest, err)
	}
	logger.Debug("Output indexed.", "index", index)
	return nil
}

func (m *VCFMerger) mergeWithTool(ctx context.Context, parts []string, dest string) error {
	if err := os.MkdirAll(m.workDir, 0o755); err != nil {
		return err
	}
	plain, err := os.CreateTemp(m.workDir, "merge-*.vcf")
	if err != nil {
		return err
	}
	defer os.Remove(plain.Name())

	w := bufio.NewWriterSize(plain, 64*1024)
	if err := concatParts(ctx, parts, w); err != nil {
		plain.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		plain.Close()
		return err
	}
	if err := plain.Close(); err != nil {
		return err
	}
	return renderAndRun(ctx, m.cmd, m.compress, compressVars(plain.Name(), dest))
}

// concatParts writes the first part's header and every part's records to w.
func concatParts(ctx context.Context, parts []string, w io.Writer) error {
	for i, part := range parts {
		if err := copyPart(ctx, part, w, i == 0); err != nil {
			return fmt.Errorf("part %d (%s): %w", i, part, err)
		}
	}
	return nil
}

func copyPart(ctx context.Context, path string, w io.Writer, withHeader bool) error {
	r, err := openVCF(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for lines := 0; ; lines++ {
		if lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, err := r.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if isBlank(line) || (isHeader(line) && !withHeader) {
			continue
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
}

// writeBGZF creates path and fills it through a BGZF writer.
func writeBGZF(path string, fill func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriterSize(f, 64*1024)
	zw := newBGZFWriter(bw)
	if err := fill(zw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
