// Package manifest describes a prompt as an ordered list of templated
// sections, loaded from YAML, JSON or TOML.
//
//	vars:
//	  name: Sam
//	sections:
//	  - key: persona
//	    priority: critical
//	    content: "You are talking with {{name}}."
//	  - key: history
//	    priority: low
//	    max_tokens: 400
//	    file: history.md
//
// File paths are relative to the manifest's directory. Every section body is
// rendered through the template engine before allocation.
package manifest
