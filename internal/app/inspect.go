package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/annosplit/internal/manifest"
)

// Inspect prints a summary of a kept run: its status, how many tasks were
// annotated, the state of every output and the tasks still pending. path is
// a manifest file or the work directory holding one.
func Inspect(outW io.Writer, path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, manifest.Filename)
	}
	doc, err := manifest.Read(path)
	if err != nil {
		return err
	}

	pending := doc.Pending()
	fmt.Fprintf(outW, "run %s: %s\n", doc.RunID, doc.Status)
	if doc.Error != "" {
		fmt.Fprintf(outW, "error: %s\n", doc.Error)
	}
	fmt.Fprintf(outW, "tasks: %d of %d annotated\n", len(doc.Tasks)-len(pending), len(doc.Tasks))
	for _, out := range doc.Outputs {
		state := "not merged"
		if out.Merged {
			state = "merged"
		}
		fmt.Fprintf(outW, "output %s [%s, %d splits]: %s\n", out.Path, out.Index, out.Splits, state)
	}
	for _, task := range pending {
		fmt.Fprintf(outW, "pending %s\n", task.ID)
	}
	return nil
}
