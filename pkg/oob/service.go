package oob

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/mfacore/pkg/logger"
)

const (
	DefaultCodeLength = 6               // Digits per code
	DefaultTTL        = 5 * time.Minute // Code lifetime
)

// Channel identifies the out-of-band delivery mechanism.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Valid reports whether the channel is one of the supported delivery mechanisms.
func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelEmail
}

// CodeRecord is the stored state of an issued code. ExpiresAt travels with the
// record so a recently expired code can be reported as expired rather than
// indistinguishable from never-issued.
type CodeRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeCache is the TTL store backing issued codes, keyed by (identity, channel).
// Implementations must treat Set as overwrite and may drop entries any time
// after their TTL. Delete reports whether this call removed a live entry:
// concurrent deletes of the same key must resolve to exactly one true, since
// that bool decides which of several racing verifications consumed the code.
type CodeCache interface {
	Set(ctx context.Context, key string, record CodeRecord, ttl time.Duration) error
	Get(ctx context.Context, key string) (CodeRecord, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Dispatcher hands an issued code to the external SMS/email collaborator.
// The service never retries dispatch; a failure is advisory and leaves the
// stored code valid.
type Dispatcher interface {
	Dispatch(ctx context.Context, identityID uuid.UUID, channel Channel, code string) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, identityID uuid.UUID, channel Channel, code string) error

func (f DispatcherFunc) Dispatch(ctx context.Context, identityID uuid.UUID, channel Channel, code string) error {
	return f(ctx, identityID, channel, code)
}

// Issued describes a successfully stored code. The code itself is only handed
// to the dispatcher, never returned to the caller.
type Issued struct {
	Channel   Channel
	ExpiresAt time.Time
}

// Service issues and verifies short-lived numeric codes delivered out of band.
// At most one code is live per (identity, channel); issuing again overwrites
// the previous one.
type Service struct {
	cache      CodeCache
	dispatcher Dispatcher
	ttl        time.Duration
	codeLength int
	logger     *slog.Logger
	now        func() time.Time
}

// Option is a functional option for Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTTL sets the code lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCodeLength sets the number of digits per code.
func WithCodeLength(length int) Option {
	return func(s *Service) {
		if length >= 4 {
			s.codeLength = length
		}
	}
}

// WithClock overrides the time source, used in tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an out-of-band code service backed by the given cache
// and dispatcher.
func NewService(cache CodeCache, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		cache:      cache,
		dispatcher: dispatcher,
		ttl:        DefaultTTL,
		codeLength: DefaultCodeLength,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue generates a fresh numeric code for the identity and channel, stores it,
// and hands it to the dispatcher. Any unexpired code for the same pair is
// overwritten. The code is valid the moment it is stored: a dispatch failure
// returns ErrDispatchFailed alongside the issuance but does not invalidate it.
func (s *Service) Issue(ctx context.Context, identityID uuid.UUID, channel Channel) (*Issued, error) {
	if !channel.Valid() {
		return nil, ErrUnsupportedChannel
	}

	code, err := randomNumericCode(s.codeLength)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.ttl)
	record := CodeRecord{Code: code, ExpiresAt: expiresAt}

	// Retain the record one extra lifetime beyond expiry so verification can
	// still distinguish "expired" from "never issued".
	if err := s.cache.Set(ctx, cacheKey(identityID, channel), record, 2*s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	issued := &Issued{Channel: channel, ExpiresAt: expiresAt}

	if err := s.dispatcher.Dispatch(ctx, identityID, channel, code); err != nil {
		s.logger.WarnContext(ctx, "code dispatch failed",
			logger.IdentityID(identityID),
			logger.Channel(string(channel)),
			logger.Error(err),
		)
		return issued, errors.Join(ErrDispatchFailed, err)
	}

	return issued, nil
}

// Verify checks a presented code against the live one for (identity, channel).
// A match deletes the stored code and returns true: one success per issuance.
// A mismatch leaves the code intact so the user may retry until expiry.
// Returns ErrNoActiveCode when nothing was issued and ErrCodeExpired when the
// code's lifetime has elapsed.
func (s *Service) Verify(ctx context.Context, identityID uuid.UUID, channel Channel, code string) (bool, error) {
	if !channel.Valid() {
		return false, ErrUnsupportedChannel
	}

	key := cacheKey(identityID, channel)

	record, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load verification code: %w", err)
	}
	if !ok {
		return false, ErrNoActiveCode
	}

	if !s.now().Before(record.ExpiresAt) {
		if _, err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to purge expired code", logger.Error(err))
		}
		return false, ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return false, nil
	}

	// The delete is the atomic decision point: of any number of racing
	// verifications that read the same live record, only the one whose
	// delete removed the entry has consumed the code.
	deleted, err := s.cache.Delete(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}

	return deleted, nil
}

func cacheKey(identityID uuid.UUID, channel Channel) string {
	return fmt.Sprintf("%s:%s", identityID, channel)
}

func randomNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	ten := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", errors.Join(ErrFailedToGenerateCode, err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
