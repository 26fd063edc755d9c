package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("user-1", "user-1/assessments.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	grant, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "user-1", grant.OwnerID)
	require.Equal(t, "user-1/assessments.csv", grant.Path)
	require.WithinDuration(t, expiresAt, grant.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", 10*time.Millisecond)
	token, _, err := signer.Generate("user-1", "user-1/history.pdf")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, err = signer.Parse(token, false)
	require.Error(t, err)

	grant, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "user-1/history.pdf", grant.Path)
}

func TestSignedURLSignerRejectsTamperedOwner(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("user-1", "user-1/a.csv")
	require.NoError(t, err)

	forged := "user-2" + strings.TrimPrefix(token, "user-1")
	_, err = signer.Parse(forged, false)
	require.Error(t, err)

	_, _, err = signer.Generate("a.b", "x.csv")
	require.Error(t, err)
}
