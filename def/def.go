// Package def loads pipelines from YAML or JSON definitions.
//
// A definition names registered functions and their arguments:
//
//	name: greet
//	stages:
//	  - func: get
//	    args: [name]
//	  - func: format
//	    args: ["hello %s", {$ref: X}]
//
// An argument written as a single-key map {$ref: <placeholder>} becomes a
// placeholder, parsed with pipefunc.ParsePlaceholder.
package def

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davidroman0O/pipefunc"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// RefKey marks a placeholder argument.
const RefKey = "$ref"

// PipelineDef is a serializable representation of a Pipeline.
type PipelineDef struct {
	// Name is a human-readable name for the pipeline.
	Name string `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Name used in logs"`
	// Stages are applied in order.
	Stages []StageDef `yaml:"stages" json:"stages" jsonschema:"minItems=1"`
}

// StageDef is a serializable representation of a Stage.
type StageDef struct {
	// Func is the name of a function in the registry.
	Func string `yaml:"func" json:"func" jsonschema:"minLength=1"`
	// Args are positional arguments.
	Args []any `yaml:"args,omitempty" json:"args,omitempty"`
	// Kwargs are keyword arguments, in the order written.
	Kwargs KwargsDef `yaml:"kwargs,omitempty" json:"kwargs,omitempty" jsonschema_description:"Keyword arguments passed to the function"`
}

// KwargsDef is an ordered mapping of keyword arguments.
type KwargsDef []pipefunc.Keyword

// UnmarshalYAML keeps the order of the mapping's keys.
func (k *KwargsDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: kwargs must be a mapping", node.Line)
	}
	out := make(KwargsDef, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		out = append(out, pipefunc.Kw(node.Content[i].Value, value))
	}
	*k = out
	return nil
}

// JSONSchema describes kwargs as a free-form object. The description comes
// from the field tag on StageDef, which the reflector applies last.
func (KwargsDef) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

// Parse decodes a YAML or JSON definition. Unknown fields are rejected.
func Parse(data []byte) (*PipelineDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def PipelineDef
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty pipeline definition")
		}
		return nil, fmt.Errorf("failed to parse pipeline definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads and parses the definition at path.
func Load(path string) (*PipelineDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline definition: %w", err)
	}
	return Parse(data)
}

// Validate checks the structure of the definition without resolving names.
func (d *PipelineDef) Validate() error {
	if len(d.Stages) == 0 {
		return fmt.Errorf("pipeline definition has no stages")
	}
	for i, s := range d.Stages {
		if s.Func == "" {
			return fmt.Errorf("stage %d: func is required", i)
		}
	}
	return nil
}

// Build resolves every stage against reg and returns the pipeline.
func (d *PipelineDef) Build(reg *pipefunc.Registry, opts ...pipefunc.PipelineOption) (*pipefunc.Pipeline, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	stages := make([]*pipefunc.Stage, 0, len(d.Stages))
	for i, sd := range d.Stages {
		s, err := sd.Build(reg)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, sd.Func, err)
		}
		stages = append(stages, s)
	}

	if d.Name != "" {
		opts = append([]pipefunc.PipelineOption{pipefunc.WithName(d.Name)}, opts...)
	}
	return pipefunc.NewPipeline(opts...).Then(stages...), nil
}

// Build resolves the stage's function against reg and converts placeholder
// arguments.
func (s StageDef) Build(reg *pipefunc.Registry) (*pipefunc.Stage, error) {
	fn, err := reg.Lookup(s.Func)
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(s.Args)+len(s.Kwargs))
	for _, a := range s.Args {
		v, err := argValue(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	for _, kw := range s.Kwargs {
		v, err := argValue(kw.Value)
		if err != nil {
			return nil, fmt.Errorf("kwarg %s: %w", kw.Name, err)
		}
		args = append(args, pipefunc.Kw(kw.Name, v))
	}
	return pipefunc.New(fn, args...), nil
}

// argValue turns {$ref: expr} into a placeholder and leaves other values alone.
func argValue(a any) (any, error) {
	m, ok := a.(map[string]any)
	if !ok || len(m) != 1 {
		return a, nil
	}
	ref, ok := m[RefKey]
	if !ok {
		return a, nil
	}
	expr, ok := ref.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string, got %T", RefKey, ref)
	}
	return pipefunc.ParsePlaceholder(expr)
}

// Schema returns the JSON schema of PipelineDef.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	return json.MarshalIndent(reflector.Reflect(&PipelineDef{}), "", "  ")
}
