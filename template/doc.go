// Package template renders section content with variable substitution.
//
// Section manifests describe prompt blocks as templates so one manifest can
// serve many users. Variables use double braces:
//
//	You are talking with {{name}}. Their preferred tone is {{tone}}.
//
// Go template syntax ({{.name}}, {{if .x}}...{{end}}) is accepted as-is.
// Conditionals may also use the short form:
//
//	{{#if recent_triggers}}Recent triggers: {{recent_triggers}}{{/if}}
//
// # Built-in Functions
//
//   - upper(s string) string - Convert to uppercase
//   - lower(s string) string - Convert to lowercase
//   - trim(s string) string - Remove leading/trailing whitespace
//   - default(val, fallback any) any - Return fallback if val is nil/empty
//   - indent(s string, spaces int) string - Add spaces to each line
//   - tokens(s string, maxTokens int) string - Token-aware truncation
//
// Helper arguments that are bare identifiers are treated as variables:
//
//	{{tokens history 200}}
//
// # Missing Variables
//
// Unlike text/template's default, a variable referenced by the template but
// absent from the map is an error (ErrVariable), not "<no value>". A name may
// be absent only where it is an #if condition, a default argument, or used
// inside the if branch of an #if on that same name.
package template
