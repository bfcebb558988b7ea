package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevVerifierRoundTrip(t *testing.T) {
	v := NewDevVerifier("test-secret", time.Hour)

	token, err := v.Issue("user-1", "user@example.com", "user1")
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.Equal(t, "user1", identity.Username)
}

func TestDevVerifierRejectsWrongSecret(t *testing.T) {
	issuer := NewDevVerifier("secret-a", time.Hour)
	verifier := NewDevVerifier("secret-b", time.Hour)

	token, err := issuer.Issue("user-1", "", "")
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestDevVerifierRejectsExpiredToken(t *testing.T) {
	v := NewDevVerifier("test-secret", -time.Minute)

	token, err := v.Issue("user-1", "", "")
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestDevVerifierRejectsGarbage(t *testing.T) {
	v := NewDevVerifier("test-secret", time.Hour)

	_, err := v.Verify(context.Background(), "not-a-token")
	assert.Error(t, err)
}
