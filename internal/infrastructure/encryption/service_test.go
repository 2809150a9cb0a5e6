package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_EncryptDecrypt(t *testing.T) {
	svc, err := NewService("a-passphrase-of-any-length")
	require.NoError(t, err)

	sealed, err := svc.Encrypt("shpat_123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "shpat_123")

	other, err := svc.Encrypt("shpat_123")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, other, "nonces must differ")

	plain, err := svc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "shpat_123", plain)
}

func TestService_HexKey(t *testing.T) {
	svc, err := NewService("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)

	sealed, err := svc.Encrypt("token")
	require.NoError(t, err)
	plain, err := svc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "token", plain)
}

func TestService_Errors(t *testing.T) {
	_, err := NewService("")
	assert.Error(t, err)

	a, err := NewService("key-a")
	require.NoError(t, err)
	b, err := NewService("key-b")
	require.NoError(t, err)

	sealed, err := a.Encrypt("token")
	require.NoError(t, err)
	_, err = b.Decrypt(sealed)
	assert.Error(t, err)

	_, err = a.Decrypt("not base64!")
	assert.Error(t, err)

	_, err = a.Decrypt("AAAA")
	assert.Error(t, err)
}
