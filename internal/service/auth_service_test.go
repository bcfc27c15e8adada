package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	svc := NewAuthService("admin", "secret", "test-jwt-key")

	resp, err := svc.Login("admin", "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.AdminID, "adm_"))

	claims, err := svc.ValidateAdminToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.AdminID, claims.AdminID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService("admin", "secret", "test-jwt-key")

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("root", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJoinAndValidate(t *testing.T) {
	svc := NewAuthService("admin", "secret", "test-jwt-key")

	resp, err := svc.Join("alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.UserID, "u_"))

	claims, err := svc.ValidateParticipantToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewAuthService("admin", "secret", "test-jwt-key")

	_, err := svc.ValidateParticipantToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAdminToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthService("admin", "secret", "key-one")
	verifier := NewAuthService("admin", "secret", "key-two")

	resp, err := issuer.Join("alice")
	require.NoError(t, err)

	_, err = verifier.ValidateParticipantToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
