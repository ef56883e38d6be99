package plan

import (
	"github.com/specialistvlad/annosplit/internal/model"
)

// Cardinality is the frozen outcome of validating the discovered file counts.
// It is computed once, before anything runs concurrently, and is then passed
// by value to every stage that needs the fan-out decision.
type Cardinality struct {
	Inputs  int
	Configs int
	// FanOut is true when exactly one input is combined with several
	// configurations.
	FanOut bool
}

// Naming returns the naming mode implied by the fan-out decision.
func (c Cardinality) Naming() model.NamingMode {
	if c.FanOut {
		return model.NamingFanOut
	}
	return model.NamingSingle
}

// Validate rejects empty and many-to-many combinations of inputs and
// configurations. One-to-one, many-to-one and one-to-many are accepted.
func Validate(inputs []model.InputFile, configs []model.ConfigFile) (Cardinality, error) {
	i, c := len(inputs), len(configs)
	if i == 0 {
		return Cardinality{}, configurationf("no input files found")
	}
	if c == 0 {
		return Cardinality{}, configurationf("no configuration files found")
	}
	if i > 1 && c > 1 {
		return Cardinality{}, &Error{
			Kind: ErrCardinality,
			Msg:  "multiple input files with multiple configuration files is not supported; provide either one input or one configuration",
		}
	}
	return Cardinality{Inputs: i, Configs: c, FanOut: i == 1 && c > 1}, nil
}
