package backupcode

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/google/uuid"

	"github.com/clinova/mfacore/pkg/logger"
)

const (
	DefaultCodeCount  = 8  // Codes issued per generation batch
	DefaultCodeLength = 16 // Characters per code

	// Mixed alphanumeric alphabet without ambiguous characters (0/O, 1/l/I).
	codeAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Storage defines the per-identity backup-code persistence contract.
//
// DeleteCodeHash is the atomicity point: it must remove the hash and report
// whether this call removed it, such that concurrent calls for the same
// (identity, hash) see exactly one true result. SQL backends implement this
// with a single DELETE and its affected-row count; in-memory backends with a
// per-identity lock around the map removal.
type Storage interface {
	// ReplaceCodeHashes atomically replaces the identity's whole active set.
	ReplaceCodeHashes(ctx context.Context, identityID uuid.UUID, codeHashes []string) error
	// ListCodeHashes returns the identity's active code hashes.
	ListCodeHashes(ctx context.Context, identityID uuid.UUID) ([]string, error)
	// DeleteCodeHash removes one hash; the bool reports whether this call removed it.
	DeleteCodeHash(ctx context.Context, identityID uuid.UUID, codeHash string) (bool, error)
}

// Vault issues and consumes single-use recovery codes. Plaintext codes are
// returned exactly once at generation; only SHA-256 hashes are persisted and
// codes are never logged.
type Vault struct {
	storage    Storage
	codeCount  int
	codeLength int
	logger     *slog.Logger
}

// Option is a functional option for Vault.
type Option func(*Vault)

// WithLogger sets a custom logger for the vault.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		v.logger = logger
	}
}

// WithCodeCount sets how many codes a generation batch produces.
func WithCodeCount(count int) Option {
	return func(v *Vault) {
		if count > 0 {
			v.codeCount = count
		}
	}
}

// WithCodeLength sets the length of each generated code.
func WithCodeLength(length int) Option {
	return func(v *Vault) {
		if length >= DefaultCodeLength {
			v.codeLength = length
		}
	}
}

// NewVault creates a backup-code vault bound to the given storage.
func NewVault(storage Storage, opts ...Option) *Vault {
	v := &Vault{
		storage:    storage,
		codeCount:  DefaultCodeCount,
		codeLength: DefaultCodeLength,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Generate draws a fresh batch of random codes for the identity, replacing any
// existing set. The plaintext codes are returned exactly once and cannot be
// retrieved again.
func (v *Vault) Generate(ctx context.Context, identityID uuid.UUID) ([]string, error) {
	codes := make([]string, v.codeCount)
	hashes := make([]string, v.codeCount)
	for i := range codes {
		code, err := randomCode(v.codeLength)
		if err != nil {
			return nil, err
		}
		codes[i] = code
		hashes[i] = HashCode(code)
	}

	if err := v.storage.ReplaceCodeHashes(ctx, identityID, hashes); err != nil {
		return nil, fmt.Errorf("failed to store backup codes: %w", err)
	}

	v.logger.InfoContext(ctx, "backup codes regenerated",
		logger.IdentityID(identityID),
		logger.Count(v.codeCount),
	)

	return codes, nil
}

// Consume checks the code against the identity's active set and burns it on
// success. Exactly one of any number of concurrent calls presenting the same
// valid code succeeds. A code that matches nothing yields (false, nil);
// an empty set yields ErrCodesExhausted so the caller can prompt regeneration.
func (v *Vault) Consume(ctx context.Context, identityID uuid.UUID, code string) (bool, error) {
	hashes, err := v.storage.ListCodeHashes(ctx, identityID)
	if err != nil {
		return false, fmt.Errorf("failed to list backup codes: %w", err)
	}

	if len(hashes) == 0 {
		return false, ErrCodesExhausted
	}

	// Compare against every stored hash so timing does not reveal whether or
	// where a partial match occurred.
	presented := HashCode(code)
	matched := ""
	for _, h := range hashes {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(h)) == 1 {
			matched = h
		}
	}

	if matched == "" {
		return false, nil
	}

	// The delete is the atomic decision point; losing a race here means
	// another request already burned the code.
	deleted, err := v.storage.DeleteCodeHash(ctx, identityID, matched)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}

	if deleted {
		v.logger.InfoContext(ctx, "backup code consumed", logger.IdentityID(identityID))
	}

	return deleted, nil
}

// Remaining reports how many unused codes the identity has left.
func (v *Vault) Remaining(ctx context.Context, identityID uuid.UUID) (int, error) {
	hashes, err := v.storage.ListCodeHashes(ctx, identityID)
	if err != nil {
		return 0, fmt.Errorf("failed to list backup codes: %w", err)
	}
	return len(hashes), nil
}

// HashCode returns the hex-encoded SHA-256 hash stored in place of a plaintext code.
func HashCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Join(ErrFailedToGenerateCode, err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
