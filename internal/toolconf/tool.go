package toolconf

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Tool is one external command whose arguments are rendered per invocation.
type Tool struct {
	Name    string
	Command string

	args   hcl.Expression
	env    hcl.Expression
	stdout hcl.Expression
}

// Vars holds the variables visible to a tool's expressions, e.g.
// Vars{"split": {"path": "/work/A.cfg.split0000.vcf", "index": "0"}}.
type Vars map[string]map[string]string

// Invocation is a fully rendered command line.
type Invocation struct {
	Command string
	Args    []string
	// Env holds KEY=VALUE pairs added to the inherited environment.
	Env []string
	// Stdout, when set, is the file the command's standard output is written to.
	Stdout string
}

// functions are available to every tool expression.
var functions = map[string]function.Function{
	"concat":  stdlib.ConcatFunc,
	"format":  stdlib.FormatFunc,
	"join":    stdlib.JoinFunc,
	"lower":   stdlib.LowerFunc,
	"replace": stdlib.ReplaceFunc,
	"upper":   stdlib.UpperFunc,
}

// evalContext converts vars into the HCL evaluation context.
func (v Vars) evalContext() *hcl.EvalContext {
	variables := make(map[string]cty.Value, len(v))
	for name, attrs := range v {
		obj := make(map[string]cty.Value, len(attrs))
		for k, val := range attrs {
			obj[k] = cty.StringVal(val)
		}
		variables[name] = cty.ObjectVal(obj)
	}
	return &hcl.EvalContext{Variables: variables, Functions: functions}
}

// Render evaluates the tool's expressions against vars.
func (t *Tool) Render(vars Vars) (Invocation, error) {
	evalCtx := vars.evalContext()
	inv := Invocation{Command: t.Command}

	args, err := renderStrings(t.args, evalCtx)
	if err != nil {
		return Invocation{}, fmt.Errorf("tool %q args: %w", t.Name, err)
	}
	for _, a := range args {
		if a != "" {
			inv.Args = append(inv.Args, a)
		}
	}

	env, err := renderMap(t.env, evalCtx)
	if err != nil {
		return Invocation{}, fmt.Errorf("tool %q env: %w", t.Name, err)
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		inv.Env = append(inv.Env, k+"="+env[k])
	}

	inv.Stdout, err = renderString(t.stdout, evalCtx)
	if err != nil {
		return Invocation{}, fmt.Errorf("tool %q stdout: %w", t.Name, err)
	}
	return inv, nil
}

// evaluate returns the converted value of expr, or a null value when expr is
// absent.
func evaluate(expr hcl.Expression, evalCtx *hcl.EvalContext, want cty.Type) (cty.Value, error) {
	if expr == nil {
		return cty.NullVal(want), nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if val.IsNull() {
		return cty.NullVal(want), nil
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("value is not known")
	}
	converted, err := convert.Convert(val, want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected %s: %w", want.FriendlyName(), err)
	}
	return converted, nil
}

func renderStrings(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	val, err := evaluate(expr, evalCtx, cty.List(cty.String))
	if err != nil || val.IsNull() {
		return nil, err
	}
	var out []string
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func renderMap(expr hcl.Expression, evalCtx *hcl.EvalContext) (map[string]string, error) {
	val, err := evaluate(expr, evalCtx, cty.Map(cty.String))
	if err != nil || val.IsNull() {
		return nil, err
	}
	var out map[string]string
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func renderString(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	val, err := evaluate(expr, evalCtx, cty.String)
	if err != nil || val.IsNull() {
		return "", err
	}
	return val.AsString(), nil
}
