package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema describing File, for editor validation of
// config files.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&File{})
	s.Title = "ctxbudget config"
	return json.MarshalIndent(s, "", "  ")
}
