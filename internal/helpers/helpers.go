// Package helpers holds the small capability contracts the handlers
// depend on: keyed hashing, random identifiers, lenient JSON parsing
// and email validation.
package helpers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

var (
	// ErrUnhashable is returned when there is nothing to hash.
	ErrUnhashable = errors.New("cannot hash an empty string")
	// ErrBadLength is returned when a random string of non-positive
	// length is requested.
	ErrBadLength = errors.New("length must be a positive integer")
)

// emailPattern is an RFC-5322-lite check, not a full grammar.
var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}))$`)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Hash returns the hex HMAC-SHA256 digest of s under the given key.
// The same secret and key always yield the same digest.
func Hash(key, s string) (string, error) {
	if s == "" {
		return "", ErrUnhashable
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(s))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// RandomString returns a string of length characters drawn uniformly
// from the lowercase-alphanumeric alphabet.
func RandomString(length int) (string, error) {
	if length <= 0 {
		return "", ErrBadLength
	}
	max := big.NewInt(int64(len(idAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random string: %w", err)
		}
		out[i] = idAlphabet[n.Int64()]
	}
	return string(out), nil
}

// ParseJSON decodes data as a JSON object, best effort: malformed or
// empty input yields an empty object, never an error.
func ParseJSON(data []byte) map[string]any {
	obj := make(map[string]any)
	if err := json.Unmarshal(data, &obj); err != nil {
		return make(map[string]any)
	}
	return obj
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
