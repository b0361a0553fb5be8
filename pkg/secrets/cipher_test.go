package secrets_test

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/pkg/secrets"
)

var rawKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewCipher_KeyEncodings(t *testing.T) {
	for _, encoded := range []string{
		base64.StdEncoding.EncodeToString(rawKey),
		base64.RawURLEncoding.EncodeToString(rawKey),
		hex.EncodeToString(rawKey),
		" " + hex.EncodeToString(rawKey) + "\n",
	} {
		_, err := secrets.NewCipher(encoded)
		assert.NoError(t, err, encoded)
	}

	for _, encoded := range []string{"", "short", base64.StdEncoding.EncodeToString(rawKey[:16])} {
		_, err := secrets.NewCipher(encoded)
		assert.ErrorIs(t, err, secrets.ErrInvalidKey, encoded)
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := secrets.NewCipher(hex.EncodeToString(rawKey))
	require.NoError(t, err)

	sealed, err := c.Seal("topsecret")
	require.NoError(t, err)
	assert.True(t, secrets.IsSealed(sealed))
	assert.NotContains(t, sealed, "topsecret")

	again, err := c.Seal("topsecret")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "every seal uses a fresh nonce")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "topsecret", opened)
}

func TestCipher_OpenRejects(t *testing.T) {
	c, err := secrets.NewCipher(hex.EncodeToString(rawKey))
	require.NoError(t, err)
	other, err := secrets.NewCipher(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32))))
	require.NoError(t, err)

	sealed, err := c.Seal("topsecret")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, secrets.ErrTampered)

	_, err = c.Open(sealed[:len(sealed)-4])
	assert.ErrorIs(t, err, secrets.ErrTampered)

	_, err = c.Open("topsecret")
	assert.ErrorIs(t, err, secrets.ErrNotSealed)
}
