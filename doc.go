// Package mfacore provides the building blocks for multi-factor and biometric
// authentication: TOTP enrollment and verification, one-time backup codes,
// out-of-band challenge codes over SMS and email, biometric template matching
// for fingerprint, face and voice, and per-identity method preferences.
//
// The pieces live under pkg/ and compose behind a single façade:
//
//   - pkg/totp — RFC 6238 authenticator codes with provisioning URIs and
//     optional seed encryption at rest
//   - pkg/backupcode — batches of single-use recovery codes, stored hashed
//   - pkg/oob — short-lived numeric challenges dispatched out of band
//   - pkg/biometric — template enrollment and threshold matching
//   - pkg/mfa — the orchestrator routing enrollment and verification by method
//   - pkg/authstore — in-memory and PostgreSQL implementations of every
//     storage contract
//
// Each service accepts its storage as an interface, so callers can bring their
// own persistence or use authstore as-is. pkg/pg and pkg/redis bootstrap the
// backing infrastructure.
package mfacore
