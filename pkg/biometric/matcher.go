package biometric

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/clinova/mfacore/pkg/logger"
)

const (
	DefaultFaceThreshold  = 0.6 // Max Euclidean distance for a face match (lower is stricter)
	DefaultVoiceThreshold = 0.7 // Min cosine similarity for a voice match (higher is stricter)
	DefaultKDFIterations  = 100_000

	saltLen    = 16
	derivedLen = 32
)

// Modality identifies a biometric method.
type Modality string

const (
	ModalityFingerprint Modality = "fingerprint"
	ModalityFace        Modality = "face"
	ModalityVoice       Modality = "voice"
)

// FingerprintTemplate is the stored representation of a fingerprint
// enrollment: a random salt and the PBKDF2-derived hash of the raw sample.
// The raw sample itself is never persisted.
type FingerprintTemplate struct {
	Salt       []byte `json:"salt"`
	Hash       []byte `json:"hash"`
	Iterations int    `json:"iterations"`
}

// VectorTemplate is the stored representation of a face or voice enrollment.
type VectorTemplate struct {
	Vector     Vector    `json:"vector"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// TemplateStorage defines per-identity biometric template persistence.
// Get operations must return ErrNotEnrolled when no template exists; Save
// operations overwrite. DeleteAll must be idempotent.
type TemplateStorage interface {
	SaveFingerprint(ctx context.Context, identityID uuid.UUID, tpl FingerprintTemplate) error
	GetFingerprint(ctx context.Context, identityID uuid.UUID) (FingerprintTemplate, error)
	SaveVectorTemplate(ctx context.Context, identityID uuid.UUID, modality Modality, tpl VectorTemplate) error
	GetVectorTemplate(ctx context.Context, identityID uuid.UUID, modality Modality) (VectorTemplate, error)
	DeleteAllTemplates(ctx context.Context, identityID uuid.UUID) error
	ListModalities(ctx context.Context, identityID uuid.UUID) ([]Modality, error)
}

// Matcher enrolls and verifies biometric templates across the three supported
// modalities, each with its own comparison function and threshold.
//
// Thresholds default to values carried over from operational use rather than a
// calibrated false-accept/false-reject analysis; production deployments should
// tune them per modality against labeled data.
type Matcher struct {
	storage        TemplateStorage
	faceThreshold  float64
	voiceThreshold float64
	kdfIterations  int
	logger         *slog.Logger
	now            func() time.Time
}

// Option is a functional option for Matcher.
type Option func(*Matcher)

// WithLogger sets a custom logger for the matcher.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// WithFaceThreshold sets the maximum Euclidean distance accepted as a face match.
func WithFaceThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 {
			m.faceThreshold = threshold
		}
	}
}

// WithVoiceThreshold sets the minimum cosine similarity accepted as a voice match.
func WithVoiceThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 {
			m.voiceThreshold = threshold
		}
	}
}

// WithKDFIterations sets the PBKDF2 iteration count for fingerprint hashing.
func WithKDFIterations(iterations int) Option {
	return func(m *Matcher) {
		if iterations > 0 {
			m.kdfIterations = iterations
		}
	}
}

// WithClock overrides the time source used for enrollment timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMatcher creates a biometric matcher bound to the given template storage.
func NewMatcher(storage TemplateStorage, opts ...Option) *Matcher {
	m := &Matcher{
		storage:        storage,
		faceThreshold:  DefaultFaceThreshold,
		voiceThreshold: DefaultVoiceThreshold,
		kdfIterations:  DefaultKDFIterations,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// EnrollFingerprint derives a salted PBKDF2-HMAC-SHA256 hash from the raw
// sample and stores only the salt and hash. Re-enrollment overwrites the
// previous template, invalidating it immediately.
func (m *Matcher) EnrollFingerprint(ctx context.Context, identityID uuid.UUID, sample []byte) error {
	if len(sample) == 0 {
		return ErrInvalidSample
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return errors.Join(ErrFailedToEnroll, err)
	}

	tpl := FingerprintTemplate{
		Salt:       salt,
		Hash:       pbkdf2.Key(sample, salt, m.kdfIterations, derivedLen, sha256.New),
		Iterations: m.kdfIterations,
	}

	if err := m.storage.SaveFingerprint(ctx, identityID, tpl); err != nil {
		return fmt.Errorf("failed to save fingerprint template: %w", err)
	}

	m.logger.InfoContext(ctx, "fingerprint enrolled", logger.IdentityID(identityID))
	return nil
}

// VerifyFingerprint recomputes the derived hash from the live sample with the
// stored salt and compares in constant time.
func (m *Matcher) VerifyFingerprint(ctx context.Context, identityID uuid.UUID, sample []byte) (bool, error) {
	if len(sample) == 0 {
		return false, ErrInvalidSample
	}

	tpl, err := m.storage.GetFingerprint(ctx, identityID)
	if err != nil {
		return false, err
	}

	iterations := tpl.Iterations
	if iterations == 0 {
		iterations = m.kdfIterations
	}

	derived := pbkdf2.Key(sample, tpl.Salt, iterations, len(tpl.Hash), sha256.New)
	return subtle.ConstantTimeCompare(derived, tpl.Hash) == 1, nil
}

// EnrollFace stores the caller-supplied face encoding vector verbatim with an
// enrollment timestamp. Re-enrollment overwrites.
func (m *Matcher) EnrollFace(ctx context.Context, identityID uuid.UUID, encoding Vector) error {
	return m.enrollVector(ctx, identityID, ModalityFace, encoding)
}

// VerifyFace matches a live face encoding against the enrolled one:
// match iff the Euclidean distance is below the face threshold.
func (m *Matcher) VerifyFace(ctx context.Context, identityID uuid.UUID, encoding Vector) (bool, error) {
	tpl, err := m.loadVector(ctx, identityID, ModalityFace, encoding)
	if err != nil {
		return false, err
	}

	distance, err := EuclideanDistance(encoding, tpl.Vector)
	if err != nil {
		return false, err
	}
	return distance < m.faceThreshold, nil
}

// EnrollVoice stores the caller-supplied voice feature vector verbatim with an
// enrollment timestamp. Re-enrollment overwrites.
func (m *Matcher) EnrollVoice(ctx context.Context, identityID uuid.UUID, features Vector) error {
	return m.enrollVector(ctx, identityID, ModalityVoice, features)
}

// VerifyVoice matches a live voice feature vector against the enrolled one:
// match iff the cosine similarity exceeds the voice threshold.
func (m *Matcher) VerifyVoice(ctx context.Context, identityID uuid.UUID, features Vector) (bool, error) {
	tpl, err := m.loadVector(ctx, identityID, ModalityVoice, features)
	if err != nil {
		return false, err
	}

	similarity, err := CosineSimilarity(features, tpl.Vector)
	if err != nil {
		return false, err
	}
	return similarity > m.voiceThreshold, nil
}

// AvailableModalities reports which templates exist for the identity without
// revealing their content.
func (m *Matcher) AvailableModalities(ctx context.Context, identityID uuid.UUID) (map[Modality]bool, error) {
	enrolled, err := m.storage.ListModalities(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list biometric modalities: %w", err)
	}

	available := map[Modality]bool{
		ModalityFingerprint: false,
		ModalityFace:        false,
		ModalityVoice:       false,
	}
	for _, modality := range enrolled {
		available[modality] = true
	}
	return available, nil
}

// Clear irreversibly deletes all biometric templates for the identity.
// It is idempotent: clearing an identity with no templates succeeds.
func (m *Matcher) Clear(ctx context.Context, identityID uuid.UUID) error {
	if err := m.storage.DeleteAllTemplates(ctx, identityID); err != nil {
		return fmt.Errorf("failed to delete biometric templates: %w", err)
	}
	m.logger.InfoContext(ctx, "biometric templates cleared", logger.IdentityID(identityID))
	return nil
}

func (m *Matcher) enrollVector(ctx context.Context, identityID uuid.UUID, modality Modality, v Vector) error {
	if err := v.Validate(); err != nil {
		return err
	}

	tpl := VectorTemplate{Vector: v.Clone(), EnrolledAt: m.now()}
	if err := m.storage.SaveVectorTemplate(ctx, identityID, modality, tpl); err != nil {
		return fmt.Errorf("failed to save %s template: %w", modality, err)
	}

	m.logger.InfoContext(ctx, "biometric template enrolled",
		logger.IdentityID(identityID),
		logger.Modality(string(modality)),
	)
	return nil
}

// loadVector validates the live sample and checks dimensionality against the
// stored template before any distance computation.
func (m *Matcher) loadVector(ctx context.Context, identityID uuid.UUID, modality Modality, live Vector) (VectorTemplate, error) {
	if err := live.Validate(); err != nil {
		return VectorTemplate{}, err
	}

	tpl, err := m.storage.GetVectorTemplate(ctx, identityID, modality)
	if err != nil {
		return VectorTemplate{}, err
	}

	if len(live) != len(tpl.Vector) {
		return VectorTemplate{}, ErrDimensionMismatch
	}
	return tpl, nil
}
