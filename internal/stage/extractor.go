package stage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/annosplit/internal/model"
)

// VCFExtractor writes the full header of a split's input followed by the
// split's records as an uncompressed VCF.
type VCFExtractor struct{}

// Extract implements Extractor. It stops reading as soon as the split's last
// record has been written.
func (VCFExtractor) Extract(ctx context.Context, split model.SplitDescriptor, dest string) (err error) {
	r, err := openVCF(split.Input.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriterSize(f, 64*1024)

	var ordinal, written int64
	end := split.End()
scan:
	for lines := 0; ; lines++ {
		if lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line, err := r.next()
		if errors.Is(err, io.EOF) {
			break scan
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", split.Input.Path, err)
		}
		switch {
		case isHeader(line):
			if ordinal > 0 {
				return fmt.Errorf("%s: header line after data records", split.Input.Path)
			}
		case isBlank(line):
			continue
		default:
			if ordinal >= end {
				break scan
			}
			ordinal++
			if ordinal <= split.Start {
				continue
			}
			written++
		}
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}

	if written != split.Count {
		return fmt.Errorf("%s: split %d expects records [%d, %d) but input has %d",
			split.Input.Path, split.Index, split.Start, end, ordinal)
	}
	return w.Flush()
}
