// Package token issues and verifies RSVP edit capability tokens.
//
// A token is 32 random bytes, hex encoded. Whoever holds the edit link may
// view and edit exactly one record, so tokens are unguessable, compared in
// constant time and never logged in full.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	// ByteLength is the number of random bytes in a token
	ByteLength = 32

	// Length is the number of hex characters in a token
	Length = ByteLength * 2

	redactedPrefix = 8
)

// ErrInvalidBaseURL is returned when the edit link base is empty
var ErrInvalidBaseURL = errors.New("edit link base url cannot be empty")

var syntax = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Authority generates tokens and builds or parses edit links.
type Authority struct {
	baseURL string
	random  io.Reader
}

// NewAuthority creates an authority whose edit links live under baseURL.
func NewAuthority(baseURL string) (*Authority, error) {
	return NewAuthorityWithReader(baseURL, rand.Reader)
}

// NewAuthorityWithReader is NewAuthority with an explicit randomness source.
// Anything other than crypto/rand is only suitable for tests.
func NewAuthorityWithReader(baseURL string, random io.Reader) (*Authority, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	return &Authority{baseURL: baseURL, random: random}, nil
}

// Generate returns a fresh 64-character lowercase hex token.
func (a *Authority) Generate() (string, error) {
	buf := make([]byte, ByteLength)
	if _, err := io.ReadFull(a.random, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// EditLink returns <base-url>/edit/<token>.
func (a *Authority) EditLink(token string) string {
	return a.baseURL + "/edit/" + token
}

// ValidateSyntax reports whether candidate is exactly 64 lowercase hex
// characters and returns it unchanged.
func ValidateSyntax(candidate string) (string, bool) {
	if !syntax.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

// CheckSchema re-validates a token without the regexp engine.
func CheckSchema(candidate string) bool {
	if len(candidate) != Length {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Compare reports whether candidate equals stored without leaking where they
// differ. Both sides are digested first so inputs of different lengths take
// the same path.
func Compare(candidate, stored string) bool {
	a := blake2b.Sum256([]byte(candidate))
	b := blake2b.Sum256([]byte(stored))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// FromLink returns the last path segment of an edit link.
func FromLink(link string) string {
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndexByte(link, '/'); i >= 0 {
		return link[i+1:]
	}
	return link
}

// Redact keeps a short prefix of the token for log correlation.
func Redact(token string) string {
	if len(token) <= redactedPrefix {
		return strings.Repeat("*", len(token))
	}
	return token[:redactedPrefix] + "…"
}
