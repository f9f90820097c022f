// Package credential encodes and checks candidate passwords.
//
// The voting service stores whatever string the client sends. Older
// deployments expect base64 of the raw password; bcrypt hashes are
// accepted by the same service and are the safer choice.
package credential

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme names a password encoding
type Scheme string

const (
	SchemeBase64 Scheme = "base64"
	SchemeBcrypt Scheme = "bcrypt"
)

// ParseScheme returns the scheme named s (case-insensitive)
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeBase64, "":
		return SchemeBase64, nil
	case SchemeBcrypt:
		return SchemeBcrypt, nil
	default:
		return "", fmt.Errorf("unknown password scheme %q", s)
	}
}

// Encoder turns a password into the string sent at registration
type Encoder interface {
	Encode(password string) (string, error)
	Scheme() Scheme
}

// NewEncoder returns the encoder for scheme
func NewEncoder(scheme Scheme) (Encoder, error) {
	switch scheme {
	case SchemeBase64:
		return Base64{}, nil
	case SchemeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// Base64 is the legacy reversible encoding
type Base64 struct{}

func (Base64) Encode(password string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(password)), nil
}

func (Base64) Scheme() Scheme { return SchemeBase64 }

// Bcrypt hashes passwords with bcrypt
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Encode(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (Bcrypt) Scheme() Scheme { return SchemeBcrypt }

// IsBcrypt reports whether stored looks like a bcrypt hash
func IsBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// Verify reports whether password matches stored, whichever scheme produced it
func Verify(stored, password string) bool {
	if IsBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	encoded, _ := Base64{}.Encode(password)
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(stored)) == 1
}
