package stage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// bgzfBlockData is the most uncompressed data placed in one BGZF block. It
// leaves room for deflate overhead inside the 64 KiB block limit.
const bgzfBlockData = 0xff00

// bgzfEOF is the empty block that terminates every BGZF file.
var bgzfEOF = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// bgzfWriter writes the blocked gzip format that tabix and csi indexes
// require. Every block is a complete gzip member with a zero mtime, so the
// same input always produces the same bytes.
type bgzfWriter struct {
	w    io.Writer
	fw   *flate.Writer
	buf  []byte
	comp bytes.Buffer
	err  error
}

func newBGZFWriter(w io.Writer) *bgzfWriter {
	bw := &bgzfWriter{w: w, buf: make([]byte, 0, bgzfBlockData)}
	// DefaultCompression is always a valid level.
	bw.fw, _ = flate.NewWriter(&bw.comp, flate.DefaultCompression)
	return bw
}

func (b *bgzfWriter) Write(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	n := len(p)
	for len(p) > 0 {
		take := min(bgzfBlockData-len(b.buf), len(p))
		b.buf = append(b.buf, p[:take]...)
		p = p[take:]
		if len(b.buf) == bgzfBlockData {
			if err := b.flushBlock(); err != nil {
				return n - len(p), err
			}
		}
	}
	return n, nil
}

func (b *bgzfWriter) flushBlock() error {
	b.comp.Reset()
	b.fw.Reset(&b.comp)
	if _, err := b.fw.Write(b.buf); err != nil {
		b.err = err
		return err
	}
	if err := b.fw.Close(); err != nil {
		b.err = err
		return err
	}

	size := 18 + b.comp.Len() + 8
	if size > 1<<16 {
		b.err = fmt.Errorf("bgzf block of %d bytes exceeds limit", size)
		return b.err
	}

	var header [18]byte
	copy(header[:], []byte{0x1f, 0x8b, 0x08, 0x04, 0, 0, 0, 0, 0, 0xff, 0x06, 0x00, 'B', 'C', 0x02, 0x00})
	binary.LittleEndian.PutUint16(header[16:], uint16(size-1))

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:], crc32.ChecksumIEEE(b.buf))
	binary.LittleEndian.PutUint32(trailer[4:], uint32(len(b.buf)))

	for _, part := range [][]byte{header[:], b.comp.Bytes(), trailer[:]} {
		if _, err := b.w.Write(part); err != nil {
			b.err = err
			return err
		}
	}
	b.buf = b.buf[:0]
	return nil
}

// Close flushes buffered data and writes the EOF marker. It does not close the
// underlying writer.
func (b *bgzfWriter) Close() error {
	if b.err != nil {
		return b.err
	}
	if len(b.buf) > 0 {
		if err := b.flushBlock(); err != nil {
			return err
		}
	}
	if _, err := b.w.Write(bgzfEOF); err != nil {
		return err
	}
	b.err = errors.New("bgzf: writer closed")
	return nil
}
