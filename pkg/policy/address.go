// Package policy implements CampusMail address rules.
package policy

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Limits from RFC3696.
const (
	maxAddressLen = 320
	maxLocalLen   = 64
	maxDomainLen  = 255
	maxLabelLen   = 63

	// Specials permitted unquoted in a dot-atom local part.
	localSpecials = "!#$%&'*+-/=?^_`{|}~"
)

// ErrEmptyList is returned by ParseList when no address was given.
var ErrEmptyList = errors.New("no addresses given")

// AddressError lists the entries of an address list that failed to parse.
type AddressError struct {
	Invalid []string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid address(es): %s", strings.Join(e.Invalid, ", "))
}

// Addressing handles email address policy for a campus domain.
type Addressing struct {
	Domain string // Appended to bare user names, and used to decide local delivery.
}

// ParseAddress parses a single address, which may carry a display name.  A bare user name, such
// as "j.doe", is completed with the campus domain.  The routable part is lower cased.
func (a *Addressing) ParseAddress(s string) (*mail.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty address")
	}
	if !strings.Contains(s, "@") && a.Domain != "" {
		s += "@" + a.Domain
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	local, domain, err := ParseEmailAddress(addr.Address)
	if err != nil {
		return nil, err
	}
	addr.Address = local + "@" + strings.ToLower(domain)
	return addr, nil
}

// ParseList parses a comma or semicolon separated address list, as typed into the To, CC, and
// BCC fields.  Every bad entry is reported in the returned *AddressError.
func (a *Addressing) ParseList(s string) ([]mail.Address, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	addrs := make([]mail.Address, 0, len(fields))
	var invalid []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		addr, err := a.ParseAddress(f)
		if err != nil {
			invalid = append(invalid, f)
			continue
		}
		addrs = append(addrs, *addr)
	}
	if len(invalid) > 0 {
		return nil, &AddressError{Invalid: invalid}
	}
	if len(addrs) == 0 {
		return nil, ErrEmptyList
	}
	return addrs, nil
}

// MailboxFor returns the mailbox key owning address: the lower cased local part without any
// +extension, at the lower cased domain.
func (a *Addressing) MailboxFor(address string) (string, error) {
	addr, err := a.ParseAddress(address)
	if err != nil {
		return "", err
	}
	local, domain, _ := strings.Cut(addr.Address, "@")
	local = strings.ToLower(local)
	if idx := strings.Index(local, "+"); idx > 0 {
		local = local[:idx]
	}
	return local + "@" + domain, nil
}

// IsLocal reports whether address belongs to the campus domain.
func (a *Addressing) IsLocal(address string) bool {
	_, domain, ok := strings.Cut(address, "@")
	return ok && a.Domain != "" && strings.EqualFold(domain, a.Domain)
}

// ParseEmailAddress splits a routable address into local and domain parts, validating both
// following the guidelines in RFC3696.  Quoted local parts are not accepted.
func ParseEmailAddress(address string) (local string, domain string, err error) {
	if address == "" {
		return "", "", errors.New("empty address")
	}
	if len(address) > maxAddressLen {
		return "", "", fmt.Errorf("address exceeds %d characters", maxAddressLen)
	}
	idx := strings.LastIndexByte(address, '@')
	if idx < 0 {
		return "", "", fmt.Errorf("address %q has no domain part", address)
	}
	local, domain = address[:idx], address[idx+1:]
	if err := validateLocalPart(local); err != nil {
		return "", "", err
	}
	if !ValidateDomainPart(domain) {
		return "", "", fmt.Errorf("domain part %q failed validation", domain)
	}
	return local, domain, nil
}

// validateLocalPart accepts an unquoted dot-atom.
func validateLocalPart(local string) error {
	switch {
	case local == "":
		return errors.New("local part cannot be empty")
	case len(local) > maxLocalLen:
		return fmt.Errorf("local part must not exceed %d characters", maxLocalLen)
	case local[0] == '.':
		return errors.New("local part cannot start with a period")
	case local[len(local)-1] == '.':
		return errors.New("local part cannot end with a period")
	case strings.Contains(local, ".."):
		return errors.New("sequence of periods is not permitted")
	}
	for i := 0; i < len(local); i++ {
		c := local[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '.':
		case strings.IndexByte(localSpecials, c) >= 0:
		case c > 127:
			return errors.New("characters outside of US-ASCII range not permitted")
		default:
			return fmt.Errorf("character %q not permitted in local part", c)
		}
	}
	return nil
}

// ValidateDomainPart returns true if the domain part complies to RFC3696, RFC1035.
func ValidateDomainPart(domain string) bool {
	if domain == "" || len(domain) > maxDomainLen {
		return false
	}
	domain = strings.TrimSuffix(domain, ".")
	for _, label := range strings.Split(domain, ".") {
		if !validLabel(label) {
			return false
		}
	}
	return true
}

func validLabel(label string) bool {
	if label == "" || len(label) > maxLabelLen {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	hasAlphaNum := false
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '_':
			hasAlphaNum = true
		case c == '-':
		default:
			return false
		}
	}
	return hasAlphaNum
}
