package stringutil

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// StringAddressList converts a list of addresses to a list of strings
func StringAddressList(addrs []*mail.Address) []string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		if a != nil {
			s[i] = a.String()
		}
	}
	return s
}

// MakePathPrefixer returns a function that prepends the provided base path to its argument.
func MakePathPrefixer(basePath string) func(string) string {
	prefix := ""
	if basePath != "" {
		prefix = "/" + strings.Trim(basePath, "/")
	}
	return func(path string) string {
		return prefix + path
	}
}

// Excerpt collapses whitespace in text and truncates it to at most max runes, appending an
// ellipsis when truncated.
func Excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:max]), " ")
	return cut + "..."
}

// Initial returns the first letter of name in upper case, used for avatars.
func Initial(name string) string {
	name = strings.TrimSpace(name)
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}
