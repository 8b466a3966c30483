package policy_test

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campus = &policy.Addressing{Domain: "aru.ac.tz"}

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		input string
		want  mail.Address
	}{
		{input: "john.doe@aru.ac.tz", want: mail.Address{Address: "john.doe@aru.ac.tz"}},
		{input: "  john.doe@ARU.ac.tz ", want: mail.Address{Address: "john.doe@aru.ac.tz"}},
		{input: "john.doe", want: mail.Address{Address: "john.doe@aru.ac.tz"}},
		{
			input: "Dr. Sarah Mwanza <sarah.mwanza@aru.ac.tz>",
			want:  mail.Address{Name: "Dr. Sarah Mwanza", Address: "sarah.mwanza@aru.ac.tz"},
		},
		{input: "ext+tag@example.com", want: mail.Address{Address: "ext+tag@example.com"}},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := campus.ParseAddress(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestParseAddressErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"@aru.ac.tz",
		".john@aru.ac.tz",
		"john.@aru.ac.tz",
		"john..doe@aru.ac.tz",
		"john@-aru.ac.tz",
		"john@aru..ac.tz",
		"john@aru.ac.tz-",
		"john doe@aru.ac.tz",
		"john@" + strings.Repeat("a", 64) + ".tz",
		strings.Repeat("a", 65) + "@aru.ac.tz",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := campus.ParseAddress(input)
			assert.Error(t, err)
		})
	}
}

func TestParseAddressWithoutDomain(t *testing.T) {
	ap := &policy.Addressing{}
	_, err := ap.ParseAddress("john")
	assert.Error(t, err, "bare names need a configured domain")
}

func TestParseList(t *testing.T) {
	got, err := campus.ParseList("a@aru.ac.tz, Grace <grace.mushi@aru.ac.tz>;; peter")
	require.NoError(t, err)
	want := []mail.Address{
		{Address: "a@aru.ac.tz"},
		{Name: "Grace", Address: "grace.mushi@aru.ac.tz"},
		{Address: "peter@aru.ac.tz"},
	}
	assert.Equal(t, want, got)
}

func TestParseListErrors(t *testing.T) {
	_, err := campus.ParseList(" , ;")
	assert.ErrorIs(t, err, policy.ErrEmptyList)

	_, err = campus.ParseList("ok@aru.ac.tz, bad..one@aru.ac.tz, @nope")
	var addrErr *policy.AddressError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, []string{"bad..one@aru.ac.tz", "@nope"}, addrErr.Invalid)
	assert.Contains(t, err.Error(), "bad..one@aru.ac.tz")
}

func TestMailboxFor(t *testing.T) {
	testCases := map[string]string{
		"John.Doe@ARU.ac.tz":       "john.doe@aru.ac.tz",
		"john.doe+lists@aru.ac.tz": "john.doe@aru.ac.tz",
		"Grace <grace@aru.ac.tz>":  "grace@aru.ac.tz",
		"peter":                    "peter@aru.ac.tz",
		"someone@Example.com":      "someone@example.com",
		"+leading@aru.ac.tz":       "+leading@aru.ac.tz",
	}
	for input, want := range testCases {
		t.Run(input, func(t *testing.T) {
			got, err := campus.MailboxFor(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := campus.MailboxFor("not an address@")
	assert.Error(t, err)
}

func TestIsLocal(t *testing.T) {
	assert.True(t, campus.IsLocal("a@aru.ac.tz"))
	assert.True(t, campus.IsLocal("a@ARU.AC.TZ"))
	assert.False(t, campus.IsLocal("a@example.com"))
	assert.False(t, campus.IsLocal("aru.ac.tz"))
	assert.False(t, (&policy.Addressing{}).IsLocal("a@"))
}

func TestValidateDomainPart(t *testing.T) {
	testCases := []struct {
		input  string
		expect bool
		msg    string
	}{
		{"", false, "Empty domain is not valid"},
		{"hostname", true, "Just a hostname is valid"},
		{"github.com", true, "Two labels should be just fine"},
		{"my-domain.com", true, "Hyphen is allowed mid-label"},
		{"_domainkey.foo.com", true, "Underscores are allowed"},
		{"bar.com.", true, "Must be able to end with a dot"},
		{"ABC.6DBS.com", true, "Mixed case is OK"},
		{"mail.123.com", true, "Number only label valid"},
		{"123.com", true, "Number only label valid"},
		{strings.Repeat("a", 256), false, "Max domain length is 255"},
		{strings.Repeat("a", 63) + ".com", true, "Should allow 63 char domain label"},
		{strings.Repeat("a", 64) + ".com", false, "Max domain label length is 63"},
		{"-abc.com", false, "Label cannot start with hyphen"},
		{"abc-.com", false, "Label cannot end with hyphen"},
		{"abc..com", false, "Double dot not valid"},
		{".foo.com", false, "Cannot start with a dot"},
		{"___.com", true, "Underscore-only label is valid"},
		{"---.com", false, "Hyphen-only label is not valid"},
		{"a!b.com", false, "Punctuation is not valid"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, policy.ValidateDomainPart(tc.input), "%s: %q", tc.msg, tc.input)
	}
}
