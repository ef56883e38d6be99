package testutil

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/specialistvlad/annosplit/internal/toolconf"
)

// CommandHandler stands in for an external program in tests.
type CommandHandler func(ctx context.Context, inv toolconf.Invocation) error

// FakeCommander records every invocation and dispatches it to the handler
// registered for its command. Unknown commands fail.
type FakeCommander struct {
	Handlers map[string]CommandHandler

	mu    sync.Mutex
	calls []toolconf.Invocation
}

// Run implements stage.Commander.
func (c *FakeCommander) Run(ctx context.Context, inv toolconf.Invocation) error {
	c.mu.Lock()
	c.calls = append(c.calls, inv)
	c.mu.Unlock()

	h, ok := c.Handlers[inv.Command]
	if !ok {
		return fmt.Errorf("fake commander: unknown command %q", inv.Command)
	}
	return h(ctx, inv)
}

// Calls returns the recorded invocations of command, in call order.
func (c *FakeCommander) Calls(command string) []toolconf.Invocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []toolconf.Invocation
	for _, inv := range c.calls {
		if inv.Command == command {
			out = append(out, inv)
		}
	}
	return out
}

// FakeToolsHCL declares tools backed by the handlers in FakeHandlers.
const FakeToolsHCL = `
tool "annotate" {
  command = "fake-vep"
  args    = [split.path, output.path, config.name]
}

tool "compress" {
  command = "fake-bgzip"
  args    = [input.path]
  stdout  = output.path
}

tool "index" {
  command = "fake-tabix"
  args    = [input.path, index.type]
}
`

// FakeHandlers returns handlers for the commands in FakeToolsHCL.
func FakeHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"fake-vep":   FakeAnnotate,
		"fake-bgzip": FakeCompress,
		"fake-tabix": FakeIndex,
	}
}

// FakeAnnotate copies Args[0] to Args[1], adds a header line naming the
// configuration Args[2] and replaces each record's INFO column with
// ANN=<configuration>.
func FakeAnnotate(_ context.Context, inv toolconf.Invocation) error {
	if len(inv.Args) != 3 {
		return fmt.Errorf("fake-vep: want 3 args, got %v", inv.Args)
	}
	src, dest, cfg := inv.Args[0], inv.Args[1], inv.Args[2]

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	for _, line := range strings.SplitAfter(string(data), "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "#CHROM"):
			fmt.Fprintf(w, "##annotated=%s\n%s", cfg, line)
		case strings.HasPrefix(line, "#"):
			w.WriteString(line)
		default:
			cols := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
			cols[len(cols)-1] = "ANN=" + cfg
			w.WriteString(strings.Join(cols, "\t") + "\n")
		}
	}
	return w.Flush()
}

// FakeCompress gzips Args[0] into the invocation's stdout file.
func FakeCompress(_ context.Context, inv toolconf.Invocation) error {
	if len(inv.Args) != 1 || inv.Stdout == "" {
		return fmt.Errorf("fake-bgzip: want 1 arg and stdout, got %v > %q", inv.Args, inv.Stdout)
	}
	data, err := os.ReadFile(inv.Args[0])
	if err != nil {
		return err
	}
	out, err := os.Create(inv.Stdout)
	if err != nil {
		return err
	}
	defer out.Close()
	zw := gzip.NewWriter(out)
	if _, err := zw.Write(data); err != nil {
		return err
	}
	return zw.Close()
}

// FakeIndex creates an empty <Args[0]>.<Args[1]> sidecar.
func FakeIndex(_ context.Context, inv toolconf.Invocation) error {
	if len(inv.Args) != 2 {
		return fmt.Errorf("fake-tabix: want 2 args, got %v", inv.Args)
	}
	return os.WriteFile(inv.Args[0]+"."+inv.Args[1], nil, 0o644)
}
