package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

const (
	AESKeySize = 32 // Required key size for AES-256 (256 bits / 8 = 32 bytes)
)

// EncryptSecret encrypts a TOTP seed with AES-256-GCM for storage at rest.
// Returns the ciphertext as a base64-encoded string with the nonce prepended.
func EncryptSecret(plainText string, key []byte) (string, error) {
	if len(key) != AESKeySize {
		return "", errors.Join(ErrFailedToEncryptSecret, ErrInvalidEncryptionKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}

	cipherText := aesGCM.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(cipherText), nil
}

// DecryptSecret decrypts a TOTP seed previously produced by EncryptSecret.
func DecryptSecret(cipherTextBase64 string, key []byte) (string, error) {
	if len(key) != AESKeySize {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrInvalidEncryptionKeyLength)
	}

	cipherText, err := base64.StdEncoding.DecodeString(cipherTextBase64)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(cipherText) < nonceSize {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrInvalidCipherTooShort)
	}
	nonce, cipherText := cipherText[:nonceSize], cipherText[nonceSize:]

	plainText, err := aesGCM.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}

	return string(plainText), nil
}

// GenerateEncryptionKey creates a new random 32-byte key suitable for AES-256 encryption.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return key, nil
}

// DecodeEncryptionKey decodes a base64-encoded 32-byte encryption key,
// typically supplied via configuration.
func DecodeEncryptionKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrEncryptionKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKeyLength, err)
	}

	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}

	return key, nil
}
