package render

import (
	"strings"
	"unicode"
)

func toTitle(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func toSnakeCase(s string) string {
	return joinWords(splitWords(s), "_")
}

func toKebabCase(s string) string {
	return joinWords(splitWords(s), "-")
}

func toCamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, word := range words[1:] {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func joinWords(words []string, sep string) string {
	lowered := make([]string, 0, len(words))
	for _, word := range words {
		lowered = append(lowered, strings.ToLower(word))
	}
	return strings.Join(lowered, sep)
}

// splitWords breaks s on separators, lower-to-upper transitions and
// letter/digit boundaries: "Component_NavBar2" -> [Component Nav Bar 2].
func splitWords(s string) []string {
	var words []string
	var current strings.Builder
	var prev rune

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, char := range s {
		switch {
		case char == ' ' || char == '_' || char == '-' || char == '.':
			flush()
		case !unicode.IsLetter(char) && !unicode.IsDigit(char):
			// dropped
		case i > 0 && unicode.IsUpper(char) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			current.WriteRune(char)
		case i > 0 && unicode.IsLetter(char) != unicode.IsLetter(prev) && (unicode.IsLetter(prev) || unicode.IsDigit(prev)):
			flush()
			current.WriteRune(char)
		default:
			current.WriteRune(char)
		}
		prev = char
	}
	flush()

	return words
}
