// Package secrets seals credentials kept in the settings store so neither the store
// nor the settings cache ever holds them in the clear.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the length of a decoded key in bytes
const KeySize = 32

const (
	nonceSize = 24
	prefix    = "sbox1:"
)

var (
	// ErrInvalidKey is returned for keys that do not decode to KeySize bytes
	ErrInvalidKey = errors.New("secrets: key must be 32 bytes, base64 or hex encoded")
	// ErrNotSealed is returned when opening a value that was never sealed
	ErrNotSealed = errors.New("secrets: value is not sealed")
	// ErrTampered is returned when a sealed value fails authentication
	ErrTampered = errors.New("secrets: sealed value failed authentication")
)

// Cipher seals and opens short secrets with NaCl secretbox
type Cipher struct {
	key [KeySize]byte
}

// NewCipher decodes a base64 (standard or URL alphabet) or hex key
func NewCipher(encoded string) (*Cipher, error) {
	raw, err := decodeKey(strings.TrimSpace(encoded))
	if err != nil {
		return nil, err
	}
	c := &Cipher{}
	copy(c.key[:], raw)
	return c, nil
}

func decodeKey(encoded string) ([]byte, error) {
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		base64.RawStdEncoding.DecodeString,
		base64.URLEncoding.DecodeString,
		base64.RawURLEncoding.DecodeString,
		hex.DecodeString,
	}
	for _, decode := range decoders {
		if raw, err := decode(encoded); err == nil && len(raw) == KeySize {
			return raw, nil
		}
	}
	return nil, ErrInvalidKey
}

// Seal encrypts plaintext under a fresh random nonce
func (c *Cipher) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("secrets: failed to read nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return prefix + base64.RawURLEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal
func (c *Cipher) Open(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrNotSealed
	}
	box, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, prefix))
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrTampered
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plaintext, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", ErrTampered
	}
	return string(plaintext), nil
}

// IsSealed reports whether value carries the sealed-value prefix
func IsSealed(value string) bool {
	return strings.HasPrefix(value, prefix)
}
