package coverage

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dimension is one named research dimension of a decomposition plan. Lower
// priorities are explored first.
type Dimension struct {
	ID       string      `json:"id,omitempty" yaml:"id,omitempty"`
	Label    string      `json:"label" yaml:"label"`
	Priority int         `json:"priority" yaml:"priority"`
	Children []Dimension `json:"children,omitempty" yaml:"children,omitempty"`
}

// Plan is the topic decomposition supplied by the planning collaborator.
type Plan struct {
	Topic      string      `json:"topic,omitempty" yaml:"topic,omitempty"`
	Dimensions []Dimension `json:"dimensions" yaml:"dimensions"`
}

// ParsePlan decodes a plan from YAML or JSON.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	return &plan, nil
}
