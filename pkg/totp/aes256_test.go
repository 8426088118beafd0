package totp_test

import (
	"encoding/base64"
	"testing"

	"github.com/clinova/mfacore/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecret(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)
	require.Len(t, key, totp.AESKeySize)

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	encrypted, err := totp.EncryptSecret(secret, key)
	require.NoError(t, err)
	assert.NotEqual(t, secret, encrypted)

	decrypted, err := totp.DecryptSecret(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, secret, decrypted)
}

func TestEncryptSecret_InvalidKeyLength(t *testing.T) {
	t.Parallel()

	_, err := totp.EncryptSecret("SECRET", []byte("short"))
	assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
}

func TestDecryptSecret_Failures(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)

	t.Run("invalid key length", func(t *testing.T) {
		t.Parallel()
		_, err := totp.DecryptSecret("whatever", []byte("short"))
		assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
	})

	t.Run("cipher too short", func(t *testing.T) {
		t.Parallel()
		tiny := base64.StdEncoding.EncodeToString([]byte("abc"))
		_, err := totp.DecryptSecret(tiny, key)
		assert.ErrorIs(t, err, totp.ErrInvalidCipherTooShort)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		encrypted, err := totp.EncryptSecret("SECRET", key)
		require.NoError(t, err)

		otherKey, err := totp.GenerateEncryptionKey()
		require.NoError(t, err)

		_, err = totp.DecryptSecret(encrypted, otherKey)
		assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
	})
}

func TestDecodeEncryptionKey(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)

	decoded, err := totp.DecodeEncryptionKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = totp.DecodeEncryptionKey("")
	assert.ErrorIs(t, err, totp.ErrEncryptionKeyNotSet)

	_, err = totp.DecodeEncryptionKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
}
