package testpg

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

const ivSize = 12

// Encrypt seals plain with AES-256-GCM. The key is SHA-256 of apiKey and the
// result is base64url without padding of ciphertext followed by the tag.
func Encrypt(plain []byte, apiKey, ivBase64URL string) (string, error) {
	aead, iv, err := newAEAD(apiKey, ivBase64URL)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(aead.Seal(nil, iv, plain, nil)), nil
}

func Decrypt(enc, apiKey, ivBase64URL string) ([]byte, error) {
	aead, iv, err := newAEAD(apiKey, ivBase64URL)
	if err != nil {
		return nil, err
	}
	sealed, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(enc, "="))
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return aead.Open(nil, iv, sealed, nil)
}

func newAEAD(apiKey, ivBase64URL string) (cipher.AEAD, []byte, error) {
	iv, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(ivBase64URL, "="))
	if err != nil {
		return nil, nil, fmt.Errorf("decode iv: %w", err)
	}
	if len(iv) != ivSize {
		return nil, nil, fmt.Errorf("iv must be exactly %d bytes, got %d", ivSize, len(iv))
	}
	key := sha256.Sum256([]byte(apiKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	return aead, iv, nil
}
