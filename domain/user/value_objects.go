package user

import (
	"regexp"
	"strings"
	"unicode"

	"ddd-commerce/domain/shared"

	"golang.org/x/crypto/bcrypt"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Email Value object - immutable, represents email address
type Email struct {
	value string
}

// NewEmail Create new Email value object
func NewEmail(email string) (Email, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return Email{}, NewInvalidEmailError(email)
	}

	return Email{value: email}, nil
}

// Value Get email value
func (e Email) Value() string {
	return e.value
}

// Equals Compare if two Email value objects are equal
func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// String Implement Stringer interface
func (e Email) String() string {
	return e.value
}

const (
	passwordMinLength = 8
	passwordMaxLength = 72 // bcrypt ignores everything past 72 bytes
)

// PasswordHashCost bcrypt cost used by NewPassword.
var PasswordHashCost = bcrypt.DefaultCost

// Password Value object - holds only the bcrypt hash, never the raw input
type Password struct {
	hash string
}

// NewPassword validates the raw password and hashes it.
func NewPassword(raw string) (Password, error) {
	if len(raw) < passwordMinLength || len(raw) > passwordMaxLength {
		return Password{}, NewWeakPasswordError("password must be between 8 and 72 bytes long")
	}

	var hasLetter, hasDigit bool
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return Password{}, NewWeakPasswordError("password must contain at least one letter and one digit")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), PasswordHashCost)
	if err != nil {
		return Password{}, shared.NewValidationError("user", "password", "cannot hash password: "+err.Error())
	}
	return Password{hash: string(hash)}, nil
}

// PasswordFromHash rebuilds a Password from its stored hash.
func PasswordFromHash(hash string) Password {
	return Password{hash: hash}
}

// Matches reports whether raw is the password this hash was made from.
func (p Password) Matches(raw string) bool {
	if p.hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(raw)) == nil
}

// Hash the stored form
func (p Password) Hash() string { return p.hash }

func (p Password) Equals(other Password) bool { return p.hash == other.hash }

// String never reveals the hash.
func (p Password) String() string { return "********" }
