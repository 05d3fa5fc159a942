// Package auth issues, verifies, renews and revokes the bearer tokens
// that protect the user resource. A token is Active while its expiry
// lies in the future and Expired afterwards; expired tokens are not
// garbage-collected, expiry is checked lazily at verification time.
package auth

import (
	"errors"
	"fmt"
	"time"

	"flatauth/internal/helpers"
	"flatauth/internal/models"
	"flatauth/internal/storage"
)

const (
	// UsersCollection and TokensCollection name the storage buckets.
	UsersCollection  = "users"
	TokensCollection = "tokens"

	// TokenIDLength is the fixed length of a token identifier.
	TokenIDLength = 20

	// TokenTTL is the sliding expiry window: set on issue and pushed
	// forward from "now" on each successful extension.
	TokenTTL = time.Hour
)

var (
	// ErrInvalidCredentials is returned when a login cannot be matched
	// to a stored user and password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownUser and ErrPasswordMismatch are the two kinds of
	// credential failure. Both satisfy errors.Is against
	// ErrInvalidCredentials.
	ErrUnknownUser      = fmt.Errorf("%w: unknown user", ErrInvalidCredentials)
	ErrPasswordMismatch = fmt.Errorf("%w: password does not match", ErrInvalidCredentials)
	// ErrTokenExpired is returned when an expired token is asked to do
	// anything but die.
	ErrTokenExpired = errors.New("token has expired")
)

// Authority is the token authority. The clock is injectable so expiry
// boundaries can be pinned down in tests.
type Authority struct {
	store   *storage.Store
	hashKey string
	now     func() time.Time
}

// New returns an Authority backed by the given store, hashing secrets
// with hashKey.
func New(store *storage.Store, hashKey string) *Authority {
	return &Authority{store: store, hashKey: hashKey, now: time.Now}
}

// Issue authenticates email+password against the stored user record
// and, on success, persists and returns a fresh token valid for one
// hour. Failures are ErrUnknownUser or ErrPasswordMismatch.
func (a *Authority) Issue(email, password string) (*models.Token, error) {
	var user models.User
	if err := a.store.Read(UsersCollection, email, &user); err != nil {
		return nil, ErrUnknownUser
	}
	digest, err := helpers.Hash(a.hashKey, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if digest != user.HashedPassword {
		return nil, ErrPasswordMismatch
	}

	id, err := helpers.RandomString(TokenIDLength)
	if err != nil {
		return nil, fmt.Errorf("generate token id: %w", err)
	}
	token := &models.Token{
		ID:      id,
		Email:   email,
		Expires: a.now().Add(TokenTTL).UnixMilli(),
	}
	if err := a.store.Create(TokensCollection, id, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	return token, nil
}

// Verify reports whether the token exists, belongs to the given email
// and is still active. It is a pure read-only predicate: no renewal,
// no side effects. A token whose expiry equals "now" is expired.
func (a *Authority) Verify(tokenID, email string) bool {
	var token models.Token
	if err := a.store.Read(TokensCollection, tokenID, &token); err != nil {
		return false
	}
	return token.Email == email && !token.ExpiredAt(a.now())
}

// Extend pushes the token's expiry to one hour from now. A missing
// token is storage.ErrNotFound; extending an already expired token is
// disallowed and fails with ErrTokenExpired. Expiry only ever moves
// forward.
func (a *Authority) Extend(tokenID string) error {
	var token models.Token
	if err := a.store.Read(TokensCollection, tokenID, &token); err != nil {
		return err
	}
	// A corrupt record reads as empty and its zero expiry counts as
	// already expired, matching the lazy-expiry contract.
	if token.ExpiredAt(a.now()) {
		return ErrTokenExpired
	}
	token.Expires = a.now().Add(TokenTTL).UnixMilli()
	return a.store.Update(TokensCollection, tokenID, &token)
}

// Revoke deletes the token record. A missing token is
// storage.ErrNotFound.
func (a *Authority) Revoke(tokenID string) error {
	return a.store.Delete(TokensCollection, tokenID)
}
