package totp

import "errors"

var (
	ErrNotEnrolled               = errors.New("no TOTP secret enrolled for identity")
	ErrInvalidCodeFormat         = errors.New("invalid TOTP code format")
	ErrMissingSecret             = errors.New("missing secret")
	ErrInvalidSecret             = errors.New("invalid secret")
	ErrMissingAccountName        = errors.New("missing account name")
	ErrMissingIssuer             = errors.New("missing issuer")
	ErrFailedToGenerateSecretKey = errors.New("failed to generate TOTP secret key")
	ErrFailedToGenerateCode      = errors.New("failed to generate TOTP code")
	ErrFailedToValidateCode      = errors.New("failed to validate TOTP code")

	ErrFailedToEncryptSecret         = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret         = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("TOTP encryption key not set")
)
