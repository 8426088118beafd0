package mfa_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinova/mfacore/pkg/authstore"
	"github.com/clinova/mfacore/pkg/backupcode"
	"github.com/clinova/mfacore/pkg/biometric"
	"github.com/clinova/mfacore/pkg/logger"
	"github.com/clinova/mfacore/pkg/mfa"
	"github.com/clinova/mfacore/pkg/oob"
	"github.com/clinova/mfacore/pkg/totp"
)

// recordingDispatcher captures dispatched out-of-band codes so tests can echo
// them back through Verify.
type recordingDispatcher struct {
	mu    sync.Mutex
	codes map[oob.Channel]string
	err   error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, identityID uuid.UUID, channel oob.Channel, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	if d.codes == nil {
		d.codes = make(map[oob.Channel]string)
	}
	d.codes[channel] = code
	return nil
}

func (d *recordingDispatcher) last(channel oob.Channel) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.codes[channel]
}

type orchestratorFixture struct {
	orchestrator *mfa.Orchestrator
	store        *authstore.Memory
	dispatcher   *recordingDispatcher
	now          time.Time
}

func newOrchestratorFixture(t *testing.T, opts ...mfa.OrchestratorOption) *orchestratorFixture {
	t.Helper()

	now := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	clock := func() time.Time { return now }

	store := authstore.NewMemory()
	dispatcher := &recordingDispatcher{}

	engine := totp.NewEngine(store, "Clinova", totp.WithClock(clock))
	vault := backupcode.NewVault(store)
	oobService := oob.NewService(
		oob.NewMemoryCache(oob.WithMemoryClock(clock)),
		dispatcher,
		oob.WithClock(clock),
	)
	matcher := biometric.NewMatcher(store,
		biometric.WithKDFIterations(1_000),
		biometric.WithClock(clock),
	)
	preferences := mfa.NewPreferences(store)

	return &orchestratorFixture{
		orchestrator: mfa.NewOrchestrator(engine, vault, oobService, matcher, preferences, opts...),
		store:        store,
		dispatcher:   dispatcher,
		now:          now,
	}
}

// wrongTOTPCode returns a six-digit code that matches none of the codes the
// seed accepts at the given time, so a "wrong guess" can never collide with
// the real one.
func wrongTOTPCode(t *testing.T, secret string, now time.Time) string {
	t.Helper()

	accepted := map[string]bool{}
	for i := -1; i <= 1; i++ {
		c, err := totp.GenerateCode(secret, now.Add(time.Duration(i*totp.DefaultPeriod)*time.Second), totp.DefaultDigits, totp.DefaultPeriod)
		require.NoError(t, err)
		accepted[c] = true
	}
	for _, candidate := range []string{"000000", "000001", "000002", "000003"} {
		if !accepted[candidate] {
			return candidate
		}
	}
	t.Fatal("no non-colliding code found")
	return ""
}

func TestOrchestrator_EnrollTOTP(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	identityID := uuid.New()

	result, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{
		Method:      mfa.MethodTOTP,
		AccountName: "user@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodTOTP, result.Method)
	assert.NotEmpty(t, result.Secret)
	assert.Contains(t, result.ProvisioningURI, "otpauth://totp/")
	assert.Contains(t, result.ProvisioningURI, "user@example.com")
	assert.Empty(t, result.QRCode, "QR rendering is off by default")

	code, err := totp.GenerateCode(result.Secret, fx.now, totp.DefaultDigits, totp.DefaultPeriod)
	require.NoError(t, err)

	ok, err := fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodTOTP, Code: code})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrchestrator_EnrollTOTPWithQRCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t, mfa.WithQRCode(256))
	identityID := uuid.New()

	result, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: mfa.MethodTOTP})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.QRCode, "data:image/png;base64,"))
}

func TestOrchestrator_EnrollUnknownMethod(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)

	_, err := fx.orchestrator.Enroll(ctx, uuid.New(), mfa.EnrollmentRequest{Method: mfa.Method("carrier_pigeon")})
	assert.ErrorIs(t, err, mfa.ErrInvalidMethod)

	_, verifyErr := fx.orchestrator.Verify(ctx, uuid.New(), mfa.VerificationRequest{Method: mfa.Method("carrier_pigeon")})
	assert.ErrorIs(t, verifyErr, mfa.ErrInvalidMethod)
}

func TestOrchestrator_VerifyMasksEnrollmentState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	stranger := uuid.New() // never enrolled anything

	// An identity with nothing enrolled and an identity with a wrong code must
	// produce byte-identical outcomes: (false, nil).
	enrolled := uuid.New()
	result, err := fx.orchestrator.Enroll(ctx, enrolled, mfa.EnrollmentRequest{Method: mfa.MethodTOTP})
	require.NoError(t, err)
	wrongCode := wrongTOTPCode(t, result.Secret, fx.now)

	for _, id := range []uuid.UUID{stranger, enrolled} {
		ok, err := fx.orchestrator.Verify(ctx, id, mfa.VerificationRequest{Method: mfa.MethodTOTP, Code: wrongCode})
		assert.NoError(t, err)
		assert.False(t, ok)
	}

	// Same for biometrics and out-of-band codes.
	ok, err := fx.orchestrator.Verify(ctx, stranger, mfa.VerificationRequest{
		Method: mfa.MethodFace,
		Sample: biometric.Vector{0.1, 0.2, 0.3},
	})
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = fx.orchestrator.Verify(ctx, stranger, mfa.VerificationRequest{Method: mfa.MethodSMS, Code: "123456"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOrchestrator_VerifyFailureIsLoggedInternally(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	buf := &bytes.Buffer{}
	log := logger.New(logger.WithOutput(buf))

	fx := newOrchestratorFixture(t, mfa.WithLogger(log))
	identityID := uuid.New()

	// The caller sees a plain failure; the log records why.
	ok, err := fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodTOTP, Code: "000000"})
	require.NoError(t, err)
	assert.False(t, ok)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "second factor verification failed", entry["msg"])
	assert.Equal(t, identityID.String(), entry["identity_id"])
	assert.Equal(t, "totp", entry["method"])
	assert.Equal(t, "not_enrolled", entry["reason"])
}

func TestOrchestrator_OutOfBandFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	identityID := uuid.New()

	for _, method := range []mfa.Method{mfa.MethodSMS, mfa.MethodEmail} {
		result, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: method})
		require.NoError(t, err)
		assert.Equal(t, method, result.Method)
		assert.Equal(t, fx.now.Add(oob.DefaultTTL), result.ExpiresAt)

		code := fx.dispatcher.last(result.Channel)
		require.Len(t, code, oob.DefaultCodeLength)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		// Wrong guess keeps the code alive.
		ok, err := fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: method, Code: wrong})
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: method, Code: code})
		require.NoError(t, err)
		assert.True(t, ok)

		// Single use: the matched code is gone.
		ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: method, Code: code})
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestOrchestrator_OutOfBandDispatchFailureIsAdvisory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	fx.dispatcher.err = errors.New("smtp: connection refused")
	identityID := uuid.New()

	result, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: mfa.MethodEmail})
	assert.ErrorIs(t, err, oob.ErrDispatchFailed)
	require.NotNil(t, result, "the code was issued even though delivery failed")
	assert.Equal(t, oob.ChannelEmail, result.Channel)
}

func TestOrchestrator_BackupCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	identityID := uuid.New()

	result, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: mfa.MethodBackupCode})
	require.NoError(t, err)
	require.Len(t, result.BackupCodes, backupcode.DefaultCodeCount)

	// Each code works exactly once.
	code := result.BackupCodes[0]
	ok, err := fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodBackupCode, Code: code})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodBackupCode, Code: code})
	require.NoError(t, err)
	assert.False(t, ok)

	// Burn the rest; the empty vault reports exhaustion instead of a silent false.
	for _, c := range result.BackupCodes[1:] {
		ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodBackupCode, Code: c})
		require.NoError(t, err)
		assert.True(t, ok)
	}

	_, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodBackupCode, Code: code})
	assert.ErrorIs(t, err, backupcode.ErrCodesExhausted)
}

func TestOrchestrator_Biometrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	identityID := uuid.New()

	scan := []byte("ridge-pattern-payload")
	_, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{
		Method:            mfa.MethodFingerprint,
		FingerprintSample: scan,
	})
	require.NoError(t, err)

	face := biometric.Vector{0.12, 0.48, -0.33, 0.91}
	_, err = fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: mfa.MethodFace, Sample: face})
	require.NoError(t, err)

	voice := biometric.Vector{0.5, 0.5, 0.5}
	_, err = fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: mfa.MethodVoice, Sample: voice})
	require.NoError(t, err)

	ok, err := fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFingerprint, FingerprintSample: scan})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFingerprint, FingerprintSample: []byte("different-scan")})
	require.NoError(t, err)
	assert.False(t, ok)

	// A nearby face vector matches, a distant one does not.
	near := biometric.Vector{0.13, 0.47, -0.32, 0.90}
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFace, Sample: near})
	require.NoError(t, err)
	assert.True(t, ok)

	far := biometric.Vector{5, 5, 5, 5}
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFace, Sample: far})
	require.NoError(t, err)
	assert.False(t, ok)

	// Dimension mismatches are a caller error, not a mismatch.
	_, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFace, Sample: biometric.Vector{1, 2}})
	assert.ErrorIs(t, err, biometric.ErrDimensionMismatch)

	modalities, err := fx.orchestrator.AvailableBiometricModalities(ctx, identityID)
	require.NoError(t, err)
	assert.True(t, modalities[biometric.ModalityFingerprint])
	assert.True(t, modalities[biometric.ModalityFace])
	assert.True(t, modalities[biometric.ModalityVoice])

	require.NoError(t, fx.orchestrator.ClearBiometrics(ctx, identityID))
	require.NoError(t, fx.orchestrator.ClearBiometrics(ctx, identityID)) // idempotent

	modalities, err = fx.orchestrator.AvailableBiometricModalities(ctx, identityID)
	require.NoError(t, err)
	assert.False(t, modalities[biometric.ModalityFingerprint])
	assert.False(t, modalities[biometric.ModalityFace])
	assert.False(t, modalities[biometric.ModalityVoice])
}

func TestOrchestrator_EnrollFingerprintRequiresSample(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)

	_, err := fx.orchestrator.Enroll(ctx, uuid.New(), mfa.EnrollmentRequest{Method: mfa.MethodFingerprint})
	assert.ErrorIs(t, err, mfa.ErrMissingPayload)
}

func TestOrchestrator_MethodPreference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	identityID := uuid.New()

	method, err := fx.orchestrator.PreferredMethod(ctx, identityID)
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodTOTP, method, "unset preference defaults to totp")

	require.NoError(t, fx.orchestrator.SetPreferredMethod(ctx, identityID, mfa.MethodSMS))

	method, err = fx.orchestrator.PreferredMethod(ctx, identityID)
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodSMS, method)

	err = fx.orchestrator.SetPreferredMethod(ctx, identityID, mfa.MethodFace)
	assert.ErrorIs(t, err, mfa.ErrInvalidMethod)
}

// TestOrchestrator_FullLifecycle walks an identity through enrolling three
// factor types, verifying each, burning a backup code, and wiping biometrics.
func TestOrchestrator_FullLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newOrchestratorFixture(t)
	identityID := uuid.New()

	totpResult, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{
		Method:      mfa.MethodTOTP,
		AccountName: "alex@clinova.dev",
	})
	require.NoError(t, err)

	codesResult, err := fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{Method: mfa.MethodBackupCode})
	require.NoError(t, err)
	require.Len(t, codesResult.BackupCodes, 8)

	scan := []byte("enrollment-scan")
	_, err = fx.orchestrator.Enroll(ctx, identityID, mfa.EnrollmentRequest{
		Method:            mfa.MethodFingerprint,
		FingerprintSample: scan,
	})
	require.NoError(t, err)

	// A current authenticator code verifies.
	code, err := totp.GenerateCode(totpResult.Secret, fx.now, totp.DefaultDigits, totp.DefaultPeriod)
	require.NoError(t, err)
	ok, err := fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodTOTP, Code: code})
	require.NoError(t, err)
	assert.True(t, ok)

	// First use of a backup code succeeds, replay fails.
	backup := codesResult.BackupCodes[3]
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodBackupCode, Code: backup})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodBackupCode, Code: backup})
	require.NoError(t, err)
	assert.False(t, ok)

	// Matching and non-matching fingerprint scans.
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFingerprint, FingerprintSample: scan})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFingerprint, FingerprintSample: []byte("someone-else")})
	require.NoError(t, err)
	assert.False(t, ok)

	// Wipe biometrics; fingerprint now behaves exactly like never-enrolled.
	require.NoError(t, fx.orchestrator.ClearBiometrics(ctx, identityID))
	modalities, err := fx.orchestrator.AvailableBiometricModalities(ctx, identityID)
	require.NoError(t, err)
	assert.False(t, modalities[biometric.ModalityFingerprint])

	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodFingerprint, FingerprintSample: scan})
	require.NoError(t, err)
	assert.False(t, ok)

	// The other factors survive the biometric wipe.
	laterCode, err := totp.GenerateCode(totpResult.Secret, fx.now, totp.DefaultDigits, totp.DefaultPeriod)
	require.NoError(t, err)
	ok, err = fx.orchestrator.Verify(ctx, identityID, mfa.VerificationRequest{Method: mfa.MethodTOTP, Code: laterCode})
	require.NoError(t, err)
	assert.True(t, ok)
}
