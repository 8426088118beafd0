// Package totp implements RFC 6238 time-based one-time passwords for use as a
// second authentication factor.
//
// The package is split into two layers. The primitive layer (otp.go) covers
// seed generation (GenerateSecretKey), RFC 4226 HOTP calculation
// (GenerateHOTP), code generation and validation for arbitrary time windows
// (GenerateCode, ValidateCode), and otpauth:// provisioning URI construction
// (ProvisioningURI). The service layer (engine.go) binds those primitives to a
// SecretStorage implementation and exposes Enroll/Verify/Unenroll with
// overwrite-on-re-enroll semantics.
//
// Code comparison is constant-time (crypto/subtle) so timing never reveals
// how close a guess was. Seeds can optionally be encrypted at rest with
// AES-256-GCM (aes256.go) by configuring a 32-byte key.
//
// Minimal usage:
//
//	engine := totp.NewEngine(store, "Clinova")
//	enr, err := engine.Enroll(ctx, identityID, "alice@example.com")
//	// display enr.Secret / enr.ProvisioningURI once
//	ok, err := engine.Verify(ctx, identityID, "123456")
//
// Errors are package-level sentinels inspectable with errors.Is, e.g.
// ErrNotEnrolled and ErrInvalidCodeFormat.
package totp
