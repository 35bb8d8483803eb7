package template

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	simpleVarPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]\w*)\s*\}\}`)
	ifOpenPattern    = regexp.MustCompile(`\{\{#if\s+([a-zA-Z_]\w*)\s*\}\}`)
	helperPattern    = regexp.MustCompile(`\{\{\s*([a-zA-Z_]\w*)\s+([^{}]+?)\s*\}\}`)
	identPattern     = regexp.MustCompile(`^[a-zA-Z_]\w*$`)
	actionPattern    = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)
)

// goTemplateKeywords are never rewritten into variable references.
var goTemplateKeywords = map[string]bool{
	"else": true,
	"end":  true,
}

// goBlockKeywords open a Go template block closed by {{end}}.
var goBlockKeywords = map[string]bool{
	"if":     true,
	"range":  true,
	"with":   true,
	"block":  true,
	"define": true,
}

// convertSyntax rewrites the short forms into Go template syntax:
//
//	{{name}}           -> {{.name}}
//	{{#if x}}...{{/if}} -> {{if .x}}...{{end}}
//	{{upper name}}     -> {{upper .name}}
func convertSyntax(input string) string {
	out := ifOpenPattern.ReplaceAllString(input, "{{if .$1}}")
	out = strings.ReplaceAll(out, "{{/if}}", "{{end}}")

	out = simpleVarPattern.ReplaceAllStringFunc(out, func(match string) string {
		name := simpleVarPattern.FindStringSubmatch(match)[1]
		if goTemplateKeywords[name] {
			return match
		}
		return "{{." + name + "}}"
	})

	return helperPattern.ReplaceAllStringFunc(out, func(match string) string {
		m := helperPattern.FindStringSubmatch(match)
		if !slices.Contains(helperNames, m[1]) {
			return match
		}
		args := splitArguments(m[2])
		for i, arg := range args {
			if isVariable(arg) {
				args[i] = "." + arg
			}
		}
		return "{{" + m[1] + " " + strings.Join(args, " ") + "}}"
	})
}

// splitArguments splits on spaces outside of quotes.
func splitArguments(args string) []string {
	var parts []string
	var current strings.Builder
	var quote rune

	for _, ch := range args {
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
			current.WriteRune(ch)
		case quote != 0 && ch == quote:
			quote = 0
			current.WriteRune(ch)
		case quote == 0 && ch == ' ':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// isVariable reports whether a helper argument is a bare identifier rather
// than a literal.
func isVariable(arg string) bool {
	if arg == "true" || arg == "false" || arg == "nil" {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return identPattern.MatchString(arg)
}

// guard is an open conditional block. name is empty for Go syntax blocks.
type guard struct {
	name   string
	inElse bool
}

// scanVariables returns referenced variable names, deduplicated in order of
// first appearance, split into those that must be provided and those that
// may be absent. A name is optional when it is only used as an #if
// condition, as a default argument, or inside the if branch of an #if on
// that same name. Any other use makes it required.
func scanVariables(tmpl string) (required, optional []string) {
	requiredSeen := make(map[string]bool)
	optionalSeen := make(map[string]bool)
	var candidates []string

	markRequired := func(name string) {
		if !requiredSeen[name] {
			requiredSeen[name] = true
			required = append(required, name)
		}
	}
	markOptional := func(name string) {
		if !optionalSeen[name] {
			optionalSeen[name] = true
			candidates = append(candidates, name)
		}
	}

	var stack []guard
	guarded := func(name string) bool {
		for _, g := range stack {
			if g.name == name && !g.inElse {
				return true
			}
		}
		return false
	}
	use := func(name string) {
		if guarded(name) {
			markOptional(name)
			return
		}
		markRequired(name)
	}

	for _, m := range actionPattern.FindAllStringSubmatch(tmpl, -1) {
		fields := splitArguments(m[1])
		if len(fields) == 0 {
			continue
		}
		head := fields[0]
		switch {
		case head == "#if" && len(fields) == 2 && identPattern.MatchString(fields[1]):
			markOptional(fields[1])
			stack = append(stack, guard{name: fields[1]})
		case head == "/if" || head == "end":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case head == "else":
			if len(stack) > 0 {
				stack[len(stack)-1].inElse = true
			}
		case goBlockKeywords[head]:
			stack = append(stack, guard{})
		case len(fields) == 1 && identPattern.MatchString(head):
			use(head)
		case slices.Contains(helperNames, head):
			for _, arg := range fields[1:] {
				if !isVariable(arg) {
					continue
				}
				if head == "default" {
					markOptional(arg)
				} else {
					use(arg)
				}
			}
		}
	}

	for _, name := range candidates {
		if !requiredSeen[name] {
			optional = append(optional, name)
		}
	}
	return required, optional
}
