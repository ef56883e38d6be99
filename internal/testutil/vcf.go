package testutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// VCFHeader is the header written by WriteVCF.
const VCFHeader = "##fileformat=VCFv4.2\n" +
	"##contig=<ID=chr1>\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

// VCFRecord returns the n-th synthetic record written by WriteVCF.
func VCFRecord(n int) string {
	return fmt.Sprintf("chr1\t%d\trs%d\tA\tG\t.\tPASS\t.\n", 1000+n, n)
}

// WriteVCF writes a VCF with the given number of records to path. Paths
// ending in .gz are gzip-compressed.
func WriteVCF(t *testing.T, path string, records int) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString(VCFHeader)
	for i := 0; i < records; i++ {
		sb.WriteString(VCFRecord(i))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if !strings.HasSuffix(path, ".gz") {
		_, err = f.WriteString(sb.String())
		require.NoError(t, err)
		return
	}

	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

// ReadVCF returns the lines of a plain or gzip-compressed VCF file.
func ReadVCF(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		require.NoError(t, err)
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// DataLines filters the header lines out of a VCF line list.
func DataLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}
