package generator

import (
	"strconv"
	"strings"
	"text/template"

	"cairogen/internal/policy"
)

// templateFuncs returns custom template functions. Custom templates loaded
// with LoadTemplate get the same set.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// Rendered code
		"code": func(s string) string { return strings.TrimRight(s, "\n") },

		// String manipulation
		"quote":      strconv.Quote,
		"camelCase":  policy.CamelCase,
		"pascalCase": policy.PascalCase,
		"snakeCase":  policy.SnakeCase,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trim":       strings.TrimSpace,
		"replace":    strings.ReplaceAll,
		"hasPrefix":  strings.HasPrefix,

		// Comment formatting
		"comment": formatComment,

		// Misc
		"notLast": func(i, length int) bool { return i < length-1 },
	}
}

// formatComment formats a comment with a prefix.
func formatComment(comment, prefix string) string {
	if comment == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(comment), "\n")
	var result []string
	for _, line := range lines {
		result = append(result, prefix+strings.TrimSpace(line))
	}
	return strings.Join(result, "\n")
}
