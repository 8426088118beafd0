// Package backupcode manages single-use recovery codes for account access
// when the primary second factor is unavailable.
//
// A Vault generates fixed-size batches of cryptographically random mixed
// alphanumeric codes (default 8 codes of 16 characters). Generation replaces
// the identity's previous set atomically and returns the plaintext exactly
// once; storage retains only hex-encoded SHA-256 hashes, compared in constant
// time during consumption. Codes are never written to logs.
//
// Consumption is strictly one-time: the storage contract's DeleteCodeHash is
// the atomic check-and-remove, so two concurrent requests presenting the same
// valid code resolve to exactly one success. When the active set is empty,
// Consume reports ErrCodesExhausted, a distinct condition letting callers
// prompt regeneration through another verified factor.
package backupcode
