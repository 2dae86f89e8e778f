package naming

import (
	"strings"
	"unicode"
)

// Title generates a human readable title from an identifier: the name is split
// on every non-alphanumeric character and on camel-case boundaries, each token
// is capitalized and the tokens are joined with single spaces.
//
//	added_love_     -> "Added Love"
//	__time          -> "Time"
//	pageInBrackets  -> "Page In Brackets"
func Title(name string) string {
	tokens := tokenize(name)
	for i, t := range tokens {
		runes := []rune(t)
		runes[0] = unicode.ToUpper(runes[0])
		tokens[i] = string(runes)
	}

	return strings.Join(tokens, " ")
}

// Tokens splits an identifier into lowercase tokens using the same rules as Title.
func Tokens(name string) []string {
	tokens := tokenize(name)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// tokenize splits on separators and camel case.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "page:#love$" -> ["page", "love"]
func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "orderID" -> split before 'I'
	if isUpper && !isPrevUpper && !isSeparator(prevRune) {
		return true
	}

	// "XMLParser" -> "XML" + "Parser", split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}
