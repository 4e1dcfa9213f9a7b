package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// =============================================================================
// Administrative Credential
// =============================================================================

// ErrCredentialTooShort and friends describe why a supplied credential was
// rejected. Generated credentials always satisfy the policy.
var (
	ErrCredentialTooShort  = errors.New("credential must be at least 24 characters")
	ErrCredentialTooSimple = errors.New("credential must contain lowercase, uppercase, digit, and symbol")
)

// CredentialError wraps a credential policy violation.
type CredentialError struct {
	Err error
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("invalid credential: %v", e.Err)
}

// Unwrap returns the underlying policy error.
func (e *CredentialError) Unwrap() error {
	return e.Err
}

const (
	credentialLength  = 24
	credentialLower   = "abcdefghijklmnopqrstuvwxyz"
	credentialUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	credentialDigits  = "0123456789"
	credentialSymbols = "!@#$%^&*-_=+"
)

// GenerateRootPassword generates the administrative credential for a new
// instance: 24 characters sampled from lowercase, uppercase, digits, and a
// fixed symbol set, regenerated until every class is present.
func GenerateRootPassword() (string, error) {
	alphabet := credentialLower + credentialUpper + credentialDigits + credentialSymbols
	for {
		chars := make([]byte, credentialLength)
		for i := range chars {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
			if err != nil {
				return "", fmt.Errorf("generate credential: %w", err)
			}
			chars[i] = alphabet[n.Int64()]
		}
		password := string(chars)
		if ValidateRootPassword(password) == nil {
			return password, nil
		}
	}
}

// ValidateRootPassword checks a credential against the composition policy.
func ValidateRootPassword(password string) error {
	if len(password) < credentialLength {
		return &CredentialError{Err: ErrCredentialTooShort}
	}
	if !strings.ContainsAny(password, credentialLower) ||
		!strings.ContainsAny(password, credentialUpper) ||
		!strings.ContainsAny(password, credentialDigits) ||
		!strings.ContainsAny(password, credentialSymbols) {
		return &CredentialError{Err: ErrCredentialTooSimple}
	}
	return nil
}
