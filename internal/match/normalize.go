package match

import (
	"strings"
	"unicode"
)

// Splitter breaks an identifier into tokens.
type Splitter func(string) []string

// CamelCase splits on case boundaries and separators, keeping the original case.
// Examples:
//   - "CustomerName" -> ["Customer", "Name"]
//   - "OrderID" -> ["Order", "ID"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "order_id" -> ["order", "id"]
func CamelCase(s string) []string {
	return tokenizeCamelCase(s)
}

// Separators splits on '_', '-' and spaces only.
func Separators(s string) []string {
	return strings.FieldsFunc(s, isSeparator)
}

// NormalizeIdent lower-cases an identifier and drops separators, so that
// "customer_name", "CustomerName" and "customerName" compare equal.
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// common suffixes dropped for fuzzy suggestions, longer first
var weakSuffixes = []string{"timestamp", "ids", "utc", "id", "at"}

// NormalizeIdentWithSuffixStrip normalizes s and strips one weak suffix
// (id, ids, at, utc, timestamp) unless nothing would remain.
func NormalizeIdentWithSuffixStrip(s string) string {
	normalized := NormalizeIdent(s)

	for _, suffix := range weakSuffixes {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			return strings.TrimSuffix(normalized, suffix)
		}
	}

	return normalized
}

// TokenizeIdent splits an identifier into lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

var accessorPrefixes = []string{"Get", "Set", "Is"}

// StripAccessorPrefix drops a leading Get, Set or Is when followed by an upper
// case letter: "GetName" -> "Name", "IsActive" -> "Active", "Settle" stays.
func StripAccessorPrefix(name string) string {
	for _, prefix := range accessorPrefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if ok && rest != "" && unicode.IsUpper([]rune(rest)[0]) {
			return rest
		}
	}

	return name
}

func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken reports a lower-to-upper transition ("orderID" before 'I') or the
// end of an acronym ("XMLParser" before 'P').
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
