package stage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ctxCheckEvery is how many lines are processed between cancellation checks.
const ctxCheckEvery = 4096

// vcfReader reads VCF lines from a plain or gzip/bgzip file. bgzip files are
// multi-member gzip streams, which the gzip reader concatenates.
type vcfReader struct {
	f  *os.File
	zr *gzip.Reader
	br *bufio.Reader
}

func openVCF(path string) (*vcfReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &vcfReader{f: f, br: bufio.NewReaderSize(f, 64*1024)}

	magic, err := r.br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(r.br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		r.zr = zr
		r.br = bufio.NewReaderSize(zr, 64*1024)
	}
	return r, nil
}

// next returns the next line including its newline. A final line without a
// newline gets one. io.EOF is returned once the input is exhausted.
func (r *vcfReader) next() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line + "\n", nil
		}
		return "", err
	}
	return line, nil
}

func (r *vcfReader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.f.Close()
}

func isHeader(line string) bool {
	return strings.HasPrefix(line, "#")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// countRecords returns the number of data records in a VCF file.
func countRecords(path string) (int64, error) {
	r, err := openVCF(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var n int64
	for {
		line, err := r.next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		if !isHeader(line) && !isBlank(line) {
			n++
		}
	}
}
