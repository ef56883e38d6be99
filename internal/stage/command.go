package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/toolconf"
)

// stderrTail is how much of a failed command's stderr is kept for the error.
const stderrTail = 4096

// Commander runs a rendered tool invocation to completion.
type Commander interface {
	Run(ctx context.Context, inv toolconf.Invocation) error
}

// ExecCommander runs invocations as child processes. The process is killed
// when ctx is cancelled.
type ExecCommander struct{}

// Run implements Commander.
func (ExecCommander) Run(ctx context.Context, inv toolconf.Invocation) error {
	logger := ctxlog.FromContext(ctx)

	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.WaitDelay = 5 * time.Second

	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr
	cmd.Stdout = io.Discard
	if inv.Stdout != "" {
		out, err := os.Create(inv.Stdout)
		if err != nil {
			return fmt.Errorf("creating stdout file for %s: %w", inv.Command, err)
		}
		defer out.Close()
		cmd.Stdout = out
	}

	logger.Debug("Running command.", "command", inv.Command, "args", inv.Args, "stdout", inv.Stdout)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", inv.Command, errors.Join(ctxErr, err))
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s failed: %w", inv.Command, err)
		}
		return fmt.Errorf("%s failed: %w: %s", inv.Command, err, msg)
	}
	logger.Debug("Command finished.", "command", inv.Command, "duration", time.Since(start))
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
