// Package sanitize cleans user supplied rich text before it is stored or rendered.
package sanitize

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	// Style values are filtered by rewriteStyles before the policy sees them.
	anyStyle = regexp.MustCompile(".*")

	richPolicy = bluemonday.UGCPolicy().
			AllowElements("center", "u").
			AllowAttrs("style").Matching(anyStyle).Globally()

	plainPolicy = bluemonday.StrictPolicy()
)

// HTML sanitizes rich text, such as a bulk email or announcement body, while preserving safe
// inline CSS.
func HTML(input string) (string, error) {
	b := &bytes.Buffer{}
	if err := rewriteStyles(b, strings.NewReader(input)); err != nil {
		return "", err
	}
	return richPolicy.Sanitize(b.String()), nil
}

// Text strips all markup from input, returning unescaped plain text.
func Text(input string) string {
	return html.UnescapeString(plainPolicy.Sanitize(input))
}

// Preview returns at most max characters of plain text from body, for mailbox listings.
func Preview(body string, max int) string {
	return stringutil.Excerpt(Text(body), max)
}

// rewriteStyles copies HTML from r to w, replacing each style attribute with its filtered
// equivalent.  Style attributes left empty by the filter are dropped.
func rewriteStyles(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	z := html.NewTokenizer(r)
	tag := make([]byte, 0, 256)
	for {
		tt := z.Next()
		var out []byte
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return err
			}
			return bw.Flush()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				out = z.Raw()
				break
			}
			tag = append(tag[:0], '<')
			tag = append(tag, name...)
			tag = appendAttrs(tag, z)
			if tt == html.SelfClosingTagToken {
				tag = append(tag, '/')
			}
			out = append(tag, '>')
		default:
			out = z.Raw()
		}
		if _, err := bw.Write(out); err != nil {
			return err
		}
	}
}

// appendAttrs appends the current tag's attributes to b, double quoted.
func appendAttrs(b []byte, z *html.Tokenizer) []byte {
	for {
		key, val, more := z.TagAttr()
		value := string(val)
		keep := true
		if strings.EqualFold(string(key), "style") {
			value = filterStyle(value)
			keep = value != ""
		}
		if keep {
			b = append(b, ' ')
			b = append(b, key...)
			b = append(b, `="`...)
			b = append(b, html.EscapeString(value)...)
			b = append(b, '"')
		}
		if !more {
			return b
		}
	}
}
