package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Veenbreeze/aru-connect-mail/pkg/config"
	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrExists is returned when registering an address that already has an account.
	ErrExists = errors.New("an account with this email already exists")

	// ErrBadCredentials is returned when an address and password do not match an account.
	ErrBadCredentials = errors.New("invalid email or password")
)

// ValidationError names the form fields that must be corrected.
type ValidationError struct {
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// Registration is the sign up form.
type Registration struct {
	FullName        string `json:"fullName"`
	StudentID       string `json:"studentId"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Department      string `json:"department"`
	Role            string `json:"role"`
}

// validate checks required fields, then that the passwords agree.
func (r Registration) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"fullName", r.FullName},
		{"email", r.Email},
		{"password", r.Password},
		{"confirmPassword", r.ConfirmPassword},
		{"department", r.Department},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Reason: "required field(s) missing", Fields: missing}
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Reason: "passwords do not match", Fields: []string{"confirmPassword"}}
	}
	return nil
}

type account struct {
	Identity
	department string
	studentID  string
	hash       []byte
}

// Directory holds the registered accounts in memory.  It is safe for concurrent use.
type Directory struct {
	mu            sync.RWMutex
	accounts      map[string]*account // Keyed by mailbox.
	addressing    *policy.Addressing
	loginDelay    time.Duration
	registerDelay time.Duration
	cost          int
}

// NewDirectory creates a Directory holding the administrators named in conf.
func NewDirectory(conf config.Auth, addressing *policy.Addressing) (*Directory, error) {
	return newDirectory(conf, addressing, bcrypt.DefaultCost)
}

func newDirectory(conf config.Auth, addressing *policy.Addressing, cost int) (*Directory, error) {
	d := &Directory{
		accounts:      make(map[string]*account),
		addressing:    addressing,
		loginDelay:    conf.LoginDelay,
		registerDelay: conf.RegisterDelay,
		cost:          cost,
	}
	for _, admin := range conf.Admins {
		key, err := addressing.MailboxFor(admin.Address)
		if err != nil {
			return nil, fmt.Errorf("admin %q: %w", admin.Address, err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("admin %q: %w", admin.Address, err)
		}
		d.accounts[key] = &account{
			Identity:   Identity{Address: key, Name: "Administrator", Role: RoleAdmin},
			department: "IT Department",
			hash:       hash,
		}
	}
	log.Debug().Str("module", "auth").Str("phase", "startup").Int("admins", len(conf.Admins)).
		Msg("Account directory ready")
	return d, nil
}

// Register creates an account after the simulated registration delay.
func (d *Directory) Register(ctx context.Context, r Registration) (Identity, error) {
	if err := r.validate(); err != nil {
		return Identity{}, err
	}
	role := RoleStudent
	if r.Role != "" {
		var err error
		if role, err = ParseRole(r.Role); err != nil || role == RoleAdmin {
			return Identity{}, &ValidationError{Reason: "unsupported role", Fields: []string{"role"}}
		}
	}
	key, err := d.addressing.MailboxFor(r.Email)
	if err != nil {
		return Identity{}, &ValidationError{Reason: err.Error(), Fields: []string{"email"}}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), d.cost)
	if err != nil {
		return Identity{}, &ValidationError{Reason: err.Error(), Fields: []string{"password"}}
	}
	time.Sleep(d.registerDelay)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[key]; ok {
		return Identity{}, ErrExists
	}
	acct := &account{
		Identity:   Identity{Address: key, Name: strings.TrimSpace(r.FullName), Role: role},
		department: strings.TrimSpace(r.Department),
		studentID:  strings.TrimSpace(r.StudentID),
		hash:       hash,
	}
	d.accounts[key] = acct
	log.Info().Str("module", "auth").Str("mailbox", key).Str("role", string(role)).
		Msg("Registered account")
	return acct.Identity, nil
}

// Login checks credentials after the simulated login delay.
func (d *Directory) Login(ctx context.Context, email, password string) (Identity, error) {
	var missing []string
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return Identity{}, &ValidationError{Reason: "required field(s) missing", Fields: missing}
	}
	time.Sleep(d.loginDelay)

	key, err := d.addressing.MailboxFor(email)
	if err != nil {
		return Identity{}, ErrBadCredentials
	}
	d.mu.RLock()
	acct, ok := d.accounts[key]
	d.mu.RUnlock()
	if !ok {
		return Identity{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		log.Info().Str("module", "auth").Str("mailbox", key).Msg("Rejected login")
		return Identity{}, ErrBadCredentials
	}
	return acct.Identity, nil
}

// Lookup returns the identity registered for address.
func (d *Directory) Lookup(address string) (Identity, bool) {
	key, err := d.addressing.MailboxFor(address)
	if err != nil {
		return Identity{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[key]
	if !ok {
		return Identity{}, false
	}
	return acct.Identity, true
}
