package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// ValidateSchema checks raw YAML against the embedded CUE schema. Unknown
// keys and out-of-range values are rejected.
func ValidateSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return fmt.Errorf("compile schema: %w", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	file, err := yaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	val := ctx.BuildFile(file)
	if val.Err() != nil {
		return fmt.Errorf("%w: %v", ErrSchema, val.Err())
	}

	final := def.Unify(val)
	if err := final.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}
