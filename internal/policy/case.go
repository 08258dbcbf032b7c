package policy

import (
	"go/token"
	"strings"
	"unicode"
)

// CamelCase converts to camelCase.
func CamelCase(s string) string {
	if s == "" {
		return s
	}
	pascal := PascalCase(s)
	if pascal == "" {
		return pascal
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// PascalCase converts to PascalCase.
func PascalCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		if len(word) > 0 {
			runes := []rune(word)
			runes[0] = unicode.ToUpper(runes[0])
			for j := 1; j < len(runes); j++ {
				runes[j] = unicode.ToLower(runes[j])
			}
			words[i] = string(runes)
		}
	}
	return strings.Join(words, "")
}

// SnakeCase converts to snake_case.
func SnakeCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

// splitWords splits a string into words (handles camelCase, PascalCase, snake_case, etc.).
func splitWords(s string) []string {
	var words []string
	var current []rune

	for i, r := range s {
		if r == '_' || r == '-' || r == ' ' || r == ':' {
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
			continue
		}

		if unicode.IsUpper(r) && i > 0 {
			// Check if this is the start of a new word
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || (i+1 < len(s) && unicode.IsLower(rune(s[i+1]))) {
				if len(current) > 0 {
					words = append(words, string(current))
					current = nil
				}
			}
		}

		current = append(current, r)
	}

	if len(current) > 0 {
		words = append(words, string(current))
	}

	return words
}

// exportIdent turns a Cairo identifier into an exported Go identifier while
// keeping its internal capitalization (ERC20Event stays ERC20Event).
func exportIdent(s string) string {
	s = strings.TrimLeft(s, "_")
	if s == "" {
		return ""
	}
	runes := []rune(s)
	for i, r := range runes {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			runes[i] = '_'
		}
	}
	if unicode.IsDigit(runes[0]) {
		return "T" + string(runes)
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// validIdent reports whether s can name a Go declaration.
func validIdent(s string) bool {
	return s != "_" && token.IsIdentifier(s)
}
