package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatauth/internal/helpers"
	"flatauth/internal/models"
	"flatauth/internal/storage"
)

const (
	testKey      = "testsecret"
	testEmail    = "jane@x.com"
	testPassword = "1234567890"
)

func newTestAuthority(t *testing.T) (*Authority, *storage.Store) {
	t.Helper()
	store := storage.New(t.TempDir())
	a := New(store, testKey)

	digest, err := helpers.Hash(testKey, testPassword)
	require.NoError(t, err)
	user := models.User{
		Name:           "Jane Doe",
		Email:          testEmail,
		StreetAddress:  "1 Main St",
		HashedPassword: digest,
	}
	require.NoError(t, store.Create(UsersCollection, testEmail, &user))
	return a, store
}

func TestIssue(t *testing.T) {
	a, store := newTestAuthority(t)

	before := time.Now()
	token, err := a.Issue(testEmail, testPassword)
	require.NoError(t, err)

	assert.Len(t, token.ID, TokenIDLength)
	assert.Equal(t, testEmail, token.Email)

	lo := before.Add(TokenTTL).UnixMilli()
	hi := time.Now().Add(TokenTTL).UnixMilli()
	assert.GreaterOrEqual(t, token.Expires, lo)
	assert.LessOrEqual(t, token.Expires, hi)

	var persisted models.Token
	require.NoError(t, store.Read(TokensCollection, token.ID, &persisted))
	assert.Equal(t, *token, persisted)
}

func TestIssueBadCredentials(t *testing.T) {
	a, _ := newTestAuthority(t)

	_, err := a.Issue(testEmail, "wrongwrong")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Issue("nobody@x.com", testPassword)
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify(t *testing.T) {
	a, _ := newTestAuthority(t)

	token, err := a.Issue(testEmail, testPassword)
	require.NoError(t, err)

	assert.True(t, a.Verify(token.ID, testEmail))
	assert.False(t, a.Verify(token.ID, "other@x.com"))
	assert.False(t, a.Verify("aaaaaaaaaaaaaaaaaaaa", testEmail))
	assert.False(t, a.Verify("", testEmail))
}

func TestVerifyExpiryBoundary(t *testing.T) {
	a, store := newTestAuthority(t)

	at := time.Now()
	token := models.Token{ID: "bbbbbbbbbbbbbbbbbbbb", Email: testEmail, Expires: at.UnixMilli()}
	require.NoError(t, store.Create(TokensCollection, token.ID, &token))

	// expires == now is already expired; one millisecond later is not.
	a.now = func() time.Time { return at }
	assert.False(t, a.Verify(token.ID, testEmail))

	a.now = func() time.Time { return at.Add(-time.Millisecond) }
	assert.True(t, a.Verify(token.ID, testEmail))
}

func TestExtend(t *testing.T) {
	a, store := newTestAuthority(t)

	token, err := a.Issue(testEmail, testPassword)
	require.NoError(t, err)

	// Move the clock forward so the renewed expiry must be strictly later.
	a.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	require.NoError(t, a.Extend(token.ID))

	var renewed models.Token
	require.NoError(t, store.Read(TokensCollection, token.ID, &renewed))
	assert.Greater(t, renewed.Expires, token.Expires)
}

func TestExtendExpired(t *testing.T) {
	a, store := newTestAuthority(t)

	stale := models.Token{
		ID:      "cccccccccccccccccccc",
		Email:   testEmail,
		Expires: time.Now().Add(-time.Minute).UnixMilli(),
	}
	require.NoError(t, store.Create(TokensCollection, stale.ID, &stale))

	assert.ErrorIs(t, a.Extend(stale.ID), ErrTokenExpired)

	var unchanged models.Token
	require.NoError(t, store.Read(TokensCollection, stale.ID, &unchanged))
	assert.Equal(t, stale.Expires, unchanged.Expires)
}

func TestExtendMissing(t *testing.T) {
	a, _ := newTestAuthority(t)
	assert.ErrorIs(t, a.Extend("dddddddddddddddddddd"), storage.ErrNotFound)
}

func TestRevoke(t *testing.T) {
	a, _ := newTestAuthority(t)

	token, err := a.Issue(testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, a.Revoke(token.ID))
	assert.False(t, a.Verify(token.ID, testEmail))
	assert.ErrorIs(t, a.Revoke(token.ID), storage.ErrNotFound)
}
