package sanitize

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// allowedProperties are the CSS properties kept in style attributes; the rich text editor
// produces a subset of these, pasted content may use the rest.
var allowedProperties = map[string]bool{
	"background-color": true,
	"border":           true,
	"border-radius":    true,
	"color":            true,
	"display":          true,
	"font-family":      true,
	"font-size":        true,
	"font-style":       true,
	"font-weight":      true,
	"height":           true,
	"line-height":      true,
	"list-style-type":  true,
	"margin":           true,
	"margin-bottom":    true,
	"margin-left":      true,
	"margin-right":     true,
	"margin-top":       true,
	"max-width":        true,
	"padding":          true,
	"padding-bottom":   true,
	"padding-left":     true,
	"padding-right":    true,
	"padding-top":      true,
	"text-align":       true,
	"text-decoration":  true,
	"vertical-align":   true,
	"width":            true,
}

// styleFilter walks CSS declarations, copying those with allowed properties.
type styleFilter struct {
	out strings.Builder
	// skipping is true while discarding a declaration up to its terminating semicolon.
	skipping bool
	// inValue is true once an allowed property name has been copied.
	inValue bool
}

// filterStyle returns the declarations of a style attribute value that use allowed
// properties.  Malformed input yields the empty string.
func filterStyle(input string) string {
	f := &styleFilter{}
	scan := scanner.New(input)
	for {
		t := scan.Next()
		switch t.Type {
		case scanner.TokenEOF:
			return f.out.String()
		case scanner.TokenError:
			return ""
		}
		f.token(t)
	}
}

func (f *styleFilter) token(t *scanner.Token) {
	endOfDecl := t.Type == scanner.TokenChar && t.Value == ";"
	switch {
	case f.skipping:
		f.skipping = !endOfDecl
	case f.inValue:
		f.out.WriteString(t.Value)
		f.inValue = !endOfDecl
	case t.Type == scanner.TokenS:
		// Whitespace between declarations.
	case t.Type == scanner.TokenIdent && allowedProperties[strings.ToLower(t.Value)]:
		f.out.WriteString(t.Value)
		f.inValue = true
	default:
		f.skipping = !endOfDecl
	}
}
