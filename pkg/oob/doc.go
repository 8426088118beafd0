// Package oob issues and verifies short-lived numeric codes delivered over an
// out-of-band channel (SMS or email) as a second authentication factor.
//
// A Service stores at most one live code per (identity, channel) pair in an
// injected CodeCache; issuing again before expiry overwrites the previous
// code. Verification is single-use: a correct code is deleted on first
// success. A wrong code leaves the stored one intact so the user may retry
// until expiry — unlike backup codes, these are short-lived enough that
// retry-until-expiry costs nothing in security and helps usability.
//
// Delivery goes through the Dispatcher interface. Dispatch is fire-and-forget
// relative to the stored code: the code is valid the instant it is stored, and
// a dispatch failure is reported as the advisory ErrDispatchFailed without
// invalidating the issuance.
//
// Two CodeCache implementations ship with the package: MemoryCache (in-process
// TTL cache with an injectable clock, used by tests and single-node setups)
// and RedisCache (go-redis, for multi-node deployments).
package oob
