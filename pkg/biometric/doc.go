// Package biometric enrolls and verifies biometric templates for three
// modalities: fingerprint, face, and voice.
//
// Fingerprints are never stored raw. Enrollment derives a PBKDF2-HMAC-SHA256
// hash (100,000 iterations by default) from the sample with a fresh random
// salt, and verification recomputes the hash and compares in constant time.
//
// Face and voice samples arrive as feature vectors already computed by an
// external model; this package never processes raw images or audio. Face
// matching uses Euclidean distance (match below 0.6 by default, lower is
// stricter since 0 means identical vectors). Voice matching uses cosine
// similarity (match above 0.7 by default, higher is stricter since 1 means
// identical direction). Dimensionality between live and stored vectors is
// checked before any distance computation; mismatches surface as
// ErrDimensionMismatch, never silent truncation.
//
// Each identity holds at most one active template per modality; re-enrollment
// overwrites. AvailableModalities reports which templates exist without
// revealing content, and Clear irreversibly and idempotently removes all of
// an identity's templates.
package biometric
