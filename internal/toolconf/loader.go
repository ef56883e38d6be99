package toolconf

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/annosplit/internal/ctxlog"
)

// Tool names understood by the default stages.
const (
	Annotate = "annotate"
	Compress = "compress"
	Index    = "index"
)

var knownTools = map[string]bool{Annotate: true, Compress: true, Index: true}

// toolBlock is the raw decoded form of a `tool` block.
type toolBlock struct {
	Name    string         `hcl:"name,label"`
	Command string         `hcl:"command"`
	Args    hcl.Expression `hcl:"args,optional"`
	Env     hcl.Expression `hcl:"env,optional"`
	Stdout  hcl.Expression `hcl:"stdout,optional"`
}

// fileRoot decodes a tool file. Anything other than tool blocks is rejected
// by the decoder.
type fileRoot struct {
	Tools []*toolBlock `hcl:"tool,block"`
}

// Set is the collection of tools loaded from one file.
type Set struct {
	tools map[string]*Tool
}

// Load reads tool definitions from path, or the built-in definitions when
// path is empty.
func Load(ctx context.Context, path string) (*Set, error) {
	logger := ctxlog.FromContext(ctx)
	if path == "" {
		logger.Debug("Using built-in tool definitions.")
		return Parse([]byte(DefaultHCL), DefaultFilename)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tool file %s: %w", path, err)
	}
	set, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Tool definitions loaded.", "path", path, "tools", set.Names())
	return set, nil
}

// Parse decodes tool definitions from HCL source. The annotate tool is
// required; compress and index are optional.
func Parse(src []byte, filename string) (*Set, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	set := &Set{tools: make(map[string]*Tool)}
	for _, block := range root.Tools {
		if !knownTools[block.Name] {
			return nil, fmt.Errorf("%s: unknown tool %q", filename, block.Name)
		}
		if _, dup := set.tools[block.Name]; dup {
			return nil, fmt.Errorf("%s: tool %q is defined more than once", filename, block.Name)
		}
		if block.Command == "" {
			return nil, fmt.Errorf("%s: tool %q has an empty command", filename, block.Name)
		}
		set.tools[block.Name] = &Tool{
			Name:    block.Name,
			Command: block.Command,
			args:    block.Args,
			env:     block.Env,
			stdout:  block.Stdout,
		}
	}
	if _, ok := set.tools[Annotate]; !ok {
		return nil, fmt.Errorf("%s: tool %q is required", filename, Annotate)
	}
	return set, nil
}

// Get returns the named tool, if defined.
func (s *Set) Get(name string) (*Tool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

// Names returns the defined tool names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
