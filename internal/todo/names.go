package todo

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeListName trims the name, lower-cases it, and upper-cases the first
// letter. The result is the per-user uniqueness key, so "groceries",
// " GROCERIES " and "Groceries" all name the same list.
func NormalizeListName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))

	if name == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(first)) + name[size:]
}
