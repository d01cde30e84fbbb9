package vault_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/fountain/fountain-api/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	key, err := vault.GenerateKey()
	require.NoError(t, err)
	v, err := vault.NewFromBase64(key)
	require.NoError(t, err)
	return v
}

func TestVault_RoundTrip(t *testing.T) {
	v := newTestVault(t)

	ct, err := v.Encrypt("sEdTM1uX8pu2do5XvTnutH6HsouMaM2")
	require.NoError(t, err)

	parts := strings.Split(ct, ":")
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 32)
	assert.Len(t, parts[2], 32)
	assert.NotContains(t, ct, "sEdTM1uX8pu2do5XvTnutH6HsouMaM2")

	pt, err := v.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "sEdTM1uX8pu2do5XvTnutH6HsouMaM2", pt)
}

func TestVault_FreshIVPerEncryption(t *testing.T) {
	v := newTestVault(t)
	a, err := v.Encrypt("secret")
	require.NoError(t, err)
	b, err := v.Encrypt("secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVault_DecryptFailsClosed(t *testing.T) {
	v := newTestVault(t)
	ct, err := v.Encrypt("secret")
	require.NoError(t, err)
	parts := strings.Split(ct, ":")

	flipped := []byte(parts[2])
	if flipped[0] == '0' {
		flipped[0] = '1'
	} else {
		flipped[0] = '0'
	}

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", vault.ErrMalformedSecret},
		{"two parts", parts[0] + ":" + parts[1], vault.ErrMalformedSecret},
		{"non hex iv", "zz" + parts[0][2:] + ":" + parts[1] + ":" + parts[2], vault.ErrMalformedSecret},
		{"short iv", parts[0][:30] + ":" + parts[1] + ":" + parts[2], vault.ErrMalformedSecret},
		{"short tag", parts[0] + ":" + parts[1] + ":" + parts[2][:30], vault.ErrMalformedSecret},
		{"tampered tag", parts[0] + ":" + parts[1] + ":" + string(flipped), vault.ErrAuthenticationTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Decrypt(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVault_WrongKeyRejected(t *testing.T) {
	a := newTestVault(t)
	b := newTestVault(t)
	ct, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(ct)
	assert.ErrorIs(t, err, vault.ErrAuthenticationTag)
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := vault.New(make([]byte, 16))
	assert.ErrorIs(t, err, vault.ErrInvalidKey)

	_, err = vault.NewFromBase64(base64.StdEncoding.EncodeToString(make([]byte, 31)))
	assert.ErrorIs(t, err, vault.ErrInvalidKey)

	_, err = vault.NewFromBase64("not base64!")
	assert.Error(t, err)
}
