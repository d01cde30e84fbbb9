package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	keySize = 32
	ivSize  = 16
	tagSize = 16
)

var (
	ErrInvalidKey        = errors.New("vault key must be 32 bytes")
	ErrMalformedSecret   = errors.New("malformed ciphertext")
	ErrAuthenticationTag = errors.New("ciphertext failed authentication")
)

// Vault encrypts collection wallet secrets at rest with AES-256-GCM.
// Ciphertexts are rendered as hex `iv:payload:authTag`.
type Vault struct {
	gcm cipher.AEAD
}

// New creates a vault from a raw 256-bit key
func New(key []byte) (*Vault, error) {
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Vault{gcm: gcm}, nil
}

// NewFromBase64 creates a vault from a base64 encoded key as supplied in WALLET_ENCRYPTION_KEY
func NewFromBase64(encoded string) (*Vault, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode vault key: %w", err)
	}
	return New(key)
}

// GenerateKey returns a fresh base64 encoded 256-bit key
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt seals plaintext under a random IV
func (v *Vault) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to create iv: %w", err)
	}

	sealed := v.gcm.Seal(nil, iv, []byte(plaintext), nil)
	payload, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		hex.EncodeToString(iv),
		hex.EncodeToString(payload),
		hex.EncodeToString(tag),
	}, ":"), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any structural defect or
// tag mismatch is rejected.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	parts := strings.Split(ciphertext, ":")
	if len(parts) != 3 {
		return "", ErrMalformedSecret
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", ErrMalformedSecret
	}
	payload, err := hex.DecodeString(parts[1])
	if err != nil || len(payload) == 0 {
		return "", ErrMalformedSecret
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil || len(tag) != tagSize {
		return "", ErrMalformedSecret
	}

	plaintext, err := v.gcm.Open(nil, iv, append(payload, tag...), nil)
	if err != nil {
		return "", ErrAuthenticationTag
	}

	return string(plaintext), nil
}
