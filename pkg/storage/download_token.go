package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// downloadScope binds tokens to recap export downloads; a token minted
// here cannot be replayed against a future signing use of the same
// secret.
const downloadScope = "recap-export"

// DownloadSigner mints and verifies the HMAC tokens that authorize
// export downloads. A token names the export job and its stored file
// and expires after the configured TTL.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner builds a signer. TTL defaults to 24 hours.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns a download token for the job's stored file.
func (s *DownloadSigner) Sign(jobID, filename string) (string, time.Time, error) {
	if jobID == "" || filename == "" {
		return "", time.Time{}, fmt.Errorf("job id and filename required")
	}
	if strings.ContainsAny(jobID+filename, "|") {
		return "", time.Time{}, fmt.Errorf("job id and filename must not contain '|'")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := strings.Join([]string{jobID, filename, strconv.FormatInt(expiresAt.Unix(), 10)}, "|")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(claims))
	return encoded + "." + s.signature(claims), expiresAt, nil
}

// Verify checks a token's signature and expiry and returns its claims.
// Cleanup paths pass allowExpired to resolve files past their TTL.
func (s *DownloadSigner) Verify(token string, allowExpired bool) (jobID, filename string, expiresAt time.Time, err error) {
	encoded, signature, found := strings.Cut(token, ".")
	if !found {
		return "", "", time.Time{}, fmt.Errorf("malformed download token")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode download token: %w", err)
	}
	claims := string(raw)
	if !hmac.Equal([]byte(s.signature(claims)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("download token signature mismatch")
	}

	parts := strings.Split(claims, "|")
	if len(parts) != 3 {
		return "", "", time.Time{}, fmt.Errorf("malformed download token claims")
	}
	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("malformed download token expiry")
	}
	expiresAt = time.Unix(expUnix, 0)
	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("download token expired")
	}
	return parts[0], parts[1], expiresAt, nil
}

func (s *DownloadSigner) signature(claims string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(downloadScope + "|" + claims)) //nolint:errcheck
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
