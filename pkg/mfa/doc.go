// Package mfa composes the second-factor services — TOTP, backup codes,
// out-of-band SMS/email codes, and biometric matching — behind a single
// Orchestrator façade, and tracks each identity's preferred default method.
//
// The Orchestrator is the only entry point the web layer needs: Enroll
// provisions a factor and Verify checks a response, both routed by method tag.
// It deliberately owns no state; every operation delegates to the per-method
// service and its storage.
//
// # Error shape
//
// Expected verification failures are values, never panics. The orchestrator
// additionally guarantees that an unauthenticated prober cannot learn
// enrollment state: "no factor enrolled" and "wrong code" are externally
// identical (false, nil), with the distinction recorded only in logs.
// Conditions the caller must act on remain typed — backupcode.ErrCodesExhausted
// prompts regeneration, oob.ErrCodeExpired prompts re-issue, and
// oob.ErrDispatchFailed is advisory (the issued code stays valid).
//
// # Preferences
//
// Preferences stores one default method per identity, restricted to totp, sms,
// and email. Biometric factors always require a live sample and are never a
// silent default. Identities that never chose get totp.
package mfa
