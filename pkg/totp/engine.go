package totp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/mfacore/pkg/logger"
)

// SecretStorage defines the storage operations required by the Engine.
// Implementations must return ErrNotEnrolled when no seed exists for the
// identity, and SaveSecret must overwrite any previous seed.
type SecretStorage interface {
	SaveSecret(ctx context.Context, identityID uuid.UUID, secret string) error
	GetSecret(ctx context.Context, identityID uuid.UUID) (string, error)
	DeleteSecret(ctx context.Context, identityID uuid.UUID) error
}

// Enrollment is the result of enrolling an identity. The plaintext secret is
// returned exactly once so the caller can display it; it is never readable
// from the verification path afterwards.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
}

// Engine issues and verifies time-based one-time codes against seeds held in
// SecretStorage. The engine never caches decoded seeds between calls, so a
// re-enrollment takes effect on the very next verification.
type Engine struct {
	storage SecretStorage
	issuer  string
	digits  int
	period  int
	skew    int
	encKey  []byte // optional AES-256 key; seeds stored encrypted when set
	logger  *slog.Logger
	now     func() time.Time
}

// EngineOption is a functional option for Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets a custom logger for the engine.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDigits sets the number of digits in generated codes.
func WithDigits(digits int) EngineOption {
	return func(e *Engine) {
		if digits > 0 {
			e.digits = digits
		}
	}
}

// WithPeriod sets the code validity period in seconds.
func WithPeriod(period int) EngineOption {
	return func(e *Engine) {
		if period > 0 {
			e.period = period
		}
	}
}

// WithSkew sets how many adjacent time windows are accepted on each side.
func WithSkew(skew int) EngineOption {
	return func(e *Engine) {
		if skew >= 0 {
			e.skew = skew
		}
	}
}

// WithEncryptionKey enables AES-256-GCM encryption of seeds at rest.
// The key must be exactly 32 bytes.
func WithEncryptionKey(key []byte) EngineOption {
	return func(e *Engine) {
		e.encKey = key
	}
}

// WithClock overrides the time source, used in tests to pin time windows.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a TOTP engine bound to the given storage.
// The issuer is embedded in provisioning URIs shown to authenticator apps.
func NewEngine(storage SecretStorage, issuer string, opts ...EngineOption) *Engine {
	e := &Engine{
		storage: storage,
		issuer:  issuer,
		digits:  DefaultDigits,
		period:  DefaultPeriod,
		skew:    DefaultSkew,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enroll generates a fresh random seed for the identity, stores it, and
// returns the plaintext seed plus the otpauth:// provisioning URI.
// Any previously enrolled seed is overwritten and immediately invalid.
// An empty accountName falls back to the identity ID.
func (e *Engine) Enroll(ctx context.Context, identityID uuid.UUID, accountName string) (*Enrollment, error) {
	secret, err := GenerateSecretKey()
	if err != nil {
		return nil, err
	}

	if accountName == "" {
		accountName = identityID.String()
	}

	uri, err := ProvisioningURI(URIParams{
		Secret:      secret,
		AccountName: accountName,
		Issuer:      e.issuer,
		Digits:      e.digits,
		Period:      e.period,
	})
	if err != nil {
		return nil, err
	}

	stored := secret
	if len(e.encKey) > 0 {
		stored, err = EncryptSecret(secret, e.encKey)
		if err != nil {
			return nil, err
		}
	}

	if err := e.storage.SaveSecret(ctx, identityID, stored); err != nil {
		return nil, fmt.Errorf("failed to save TOTP secret: %w", err)
	}

	e.logger.InfoContext(ctx, "TOTP seed enrolled", logger.IdentityID(identityID))

	return &Enrollment{Secret: secret, ProvisioningURI: uri}, nil
}

// Verify checks a user-supplied code against the enrolled seed, accepting
// codes from the current time window and skew adjacent windows.
// Returns ErrNotEnrolled when no seed exists and ErrInvalidCodeFormat for
// malformed input; a well-formed non-matching code yields (false, nil).
func (e *Engine) Verify(ctx context.Context, identityID uuid.UUID, code string) (bool, error) {
	stored, err := e.storage.GetSecret(ctx, identityID)
	if err != nil {
		return false, err
	}

	secret := stored
	if len(e.encKey) > 0 {
		secret, err = DecryptSecret(stored, e.encKey)
		if err != nil {
			return false, err
		}
	}

	return ValidateCode(secret, code, e.now(), e.digits, e.period, e.skew)
}

// Unenroll removes the identity's seed. It is idempotent.
func (e *Engine) Unenroll(ctx context.Context, identityID uuid.UUID) error {
	if err := e.storage.DeleteSecret(ctx, identityID); err != nil {
		return fmt.Errorf("failed to delete TOTP secret: %w", err)
	}
	return nil
}
