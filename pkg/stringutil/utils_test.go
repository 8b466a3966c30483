package stringutil_test

import (
	"net/mail"
	"testing"

	"github.com/Veenbreeze/aru-connect-mail/pkg/stringutil"
)

func TestStringAddressList(t *testing.T) {
	input := []*mail.Address{
		{Name: "Fred B. Fish", Address: "fred@fish.org"},
		{Name: "User", Address: "user@domain.org"},
	}
	want := []string{`"Fred B. Fish" <fred@fish.org>`, `"User" <user@domain.org>`}
	output := stringutil.StringAddressList(input)
	if len(output) != len(want) {
		t.Fatalf("Got %v strings, want: %v", len(output), len(want))
	}
	for i, got := range output {
		if got != want[i] {
			t.Errorf("Got %q, want: %q", got, want[i])
		}
	}
}

func TestMakePathPrefixer(t *testing.T) {
	testCases := []struct {
		prefix, path, want string
	}{
		{prefix: "", path: "", want: ""},
		{prefix: "", path: "relative", want: "relative"},
		{prefix: "", path: "/qualified", want: "/qualified"},
		{prefix: "foo", path: "/qualified", want: "/foo/qualified"},
		{prefix: "/foo", path: "/qualified", want: "/foo/qualified"},
		{prefix: "/foo/", path: "/qualified", want: "/foo/qualified"},
	}
	for _, tc := range testCases {
		t.Run(tc.prefix+"+"+tc.path, func(t *testing.T) {
			got := stringutil.MakePathPrefixer(tc.prefix)(tc.path)
			if got != tc.want {
				t.Errorf("Got %q, want: %q", got, tc.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	testCases := []struct {
		name, input string
		max         int
		want        string
	}{
		{name: "short", input: "hello", max: 10, want: "hello"},
		{name: "whitespace", input: "  a\n\tb   c ", max: 10, want: "a b c"},
		{name: "truncate", input: "Dear Student, welcome", max: 13, want: "Dear Student,..."},
		{name: "trailing space", input: "one two three", max: 4, want: "one..."},
		{name: "unlimited", input: "one two", max: 0, want: "one two"},
		{name: "runes", input: "žluťoučký kůň", max: 4, want: "žluť..."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := stringutil.Excerpt(tc.input, tc.max)
			if got != tc.want {
				t.Errorf("Got %q, want: %q", got, tc.want)
			}
		})
	}
}

func TestInitial(t *testing.T) {
	if got := stringutil.Initial("  dr. Sarah"); got != "D" {
		t.Errorf("Got %q, want: %q", got, "D")
	}
	if got := stringutil.Initial(""); got != "" {
		t.Errorf("Got %q, want empty", got)
	}
}
