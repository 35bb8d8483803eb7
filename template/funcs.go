package template

import (
	"strings"
	"text/template"

	"github.com/randalmurphal/ctxbudget/truncate"
)

// helperNames lists the built-in helpers whose bare-identifier arguments are
// rewritten into variable references.
var helperNames = []string{"upper", "lower", "trim", "default", "indent", "tokens"}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"default": defaultValue,
		"indent":  indent,
		"tokens":  truncate.ToTokens,
	}
}

// defaultValue returns fallback if val is nil or an empty string.
func defaultValue(val, fallback any) any {
	if val == nil {
		return fallback
	}
	if s, ok := val.(string); ok && s == "" {
		return fallback
	}
	return val
}

// indent prefixes every line of s with spaces.
func indent(s string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
