package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presensi-qr-api/internal/scanner"
)

func TestLineSourceDeliversLines(t *testing.T) {
	src := newLineSource(strings.NewReader("1234567890\n0987654321\n"))
	ctx := context.Background()

	frame, err := src.Grab(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", string(frame))

	frame, err = src.Grab(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0987654321", string(frame))

	_, err = src.Grab(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineSourceCloseReleasesReader(t *testing.T) {
	src := newLineSource(strings.NewReader("111\n222\n333\n"))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	frame, err := src.Grab(ctx)
	require.NoError(t, err)
	assert.Equal(t, "111", string(frame))

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	// The feeding goroutine may already hold one line; after that the
	// channel closes instead of blocking forever.
	for {
		_, err := src.Grab(ctx)
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err, "Grab must drain or end, never hit the deadline")
	}
}

func TestTextDecoderTrimsAndSkipsBlanks(t *testing.T) {
	code, err := textDecoder{}.Decode([]byte("  1234567890 \n"))
	require.NoError(t, err)
	assert.Equal(t, "1234567890", code)

	_, err = textDecoder{}.Decode([]byte("   \n"))
	assert.ErrorIs(t, err, scanner.ErrNoCode)
}
