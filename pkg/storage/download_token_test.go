package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerSignAndVerify(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("job-1", "rekap_2024-03-11_2024-03-13.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, filename, parsedExpiry, err := signer.Verify(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "rekap_2024-03-11_2024-03-13.csv", filename)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestDownloadSignerExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Millisecond*10)
	token, _, err := signer.Sign("job-1", "rekap.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Verify(token, false)
	require.Error(t, err)

	jobID, filename, _, err := signer.Verify(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "rekap.csv", filename)
}

func TestDownloadSignerRejectsTamperedClaims(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("job-1", "rekap.csv")
	require.NoError(t, err)

	forged, _, err := signer.Sign("job-2", "rekap.csv")
	require.NoError(t, err)

	// Claims from one token with the signature of another must fail.
	claims := strings.SplitN(forged, ".", 2)[0]
	signature := strings.SplitN(token, ".", 2)[1]
	_, _, _, err = signer.Verify(claims+"."+signature, false)
	require.Error(t, err)
}

func TestDownloadSignerRejectsForeignSecret(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("job-1", "rekap.csv")
	require.NoError(t, err)

	other := NewDownloadSigner("different", time.Hour)
	_, _, _, err = other.Verify(token, false)
	require.Error(t, err)
}

func TestDownloadSignerRefusesReservedCharacter(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	_, _, err := signer.Sign("job-1", "rekap|injected.csv")
	require.Error(t, err)
}
