package mfa

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/clinova/mfacore/pkg/backupcode"
	"github.com/clinova/mfacore/pkg/biometric"
	"github.com/clinova/mfacore/pkg/logger"
	"github.com/clinova/mfacore/pkg/oob"
	"github.com/clinova/mfacore/pkg/qrcode"
	"github.com/clinova/mfacore/pkg/totp"
)

// Orchestrator is the single entry point the web layer calls to enroll a
// second factor or verify a response for any method. It owns no state of its
// own: it routes by method tag and normalizes error shapes.
//
// Enrollment-state leaks are suppressed here: callers can never distinguish
// "nothing enrolled" from "wrong code" through Verify's result — both come
// back as (false, nil). The distinction is logged for internal metrics only.
type Orchestrator struct {
	totp        *totp.Engine
	vault       *backupcode.Vault
	oob         *oob.Service
	matcher     *biometric.Matcher
	preferences *Preferences
	logger      *slog.Logger
	qrSize      int // render provisioning QR images when > 0
}

// OrchestratorOption is a functional option for Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithQRCode enables rendering of TOTP provisioning URIs into base64 PNG data
// URIs of the given pixel size in enrollment results.
func WithQRCode(size int) OrchestratorOption {
	return func(o *Orchestrator) {
		if size > 0 {
			o.qrSize = size
		}
	}
}

// NewOrchestrator wires the per-method services behind a single façade.
func NewOrchestrator(
	totpEngine *totp.Engine,
	vault *backupcode.Vault,
	oobService *oob.Service,
	matcher *biometric.Matcher,
	preferences *Preferences,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		totp:        totpEngine,
		vault:       vault,
		oob:         oobService,
		matcher:     matcher,
		preferences: preferences,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Enroll provisions the requested method for the identity. For totp it
// returns the seed and provisioning URI (and optionally a QR image); for
// backup_code a fresh plaintext batch; for sms/email it issues and dispatches
// a challenge code; for biometrics it stores the supplied sample's template.
// Re-enrolling any method invalidates its prior verification material.
func (o *Orchestrator) Enroll(ctx context.Context, identityID uuid.UUID, req EnrollmentRequest) (*EnrollmentResult, error) {
	switch req.Method {
	case MethodTOTP:
		enrollment, err := o.totp.Enroll(ctx, identityID, req.AccountName)
		if err != nil {
			return nil, err
		}
		result := &EnrollmentResult{
			Method:          MethodTOTP,
			Secret:          enrollment.Secret,
			ProvisioningURI: enrollment.ProvisioningURI,
		}
		if o.qrSize > 0 {
			image, err := qrcode.DataURI(enrollment.ProvisioningURI, o.qrSize)
			if err != nil {
				return nil, err
			}
			result.QRCode = image
		}
		return result, nil

	case MethodBackupCode:
		codes, err := o.vault.Generate(ctx, identityID)
		if err != nil {
			return nil, err
		}
		return &EnrollmentResult{Method: MethodBackupCode, BackupCodes: codes}, nil

	case MethodSMS, MethodEmail:
		channel, _ := req.Method.channel()
		issued, err := o.oob.Issue(ctx, identityID, channel)
		if err != nil && !errors.Is(err, oob.ErrDispatchFailed) {
			return nil, err
		}
		result := &EnrollmentResult{
			Method:    req.Method,
			Channel:   issued.Channel,
			ExpiresAt: issued.ExpiresAt,
		}
		// Dispatch failure is advisory: the code is stored and valid, the
		// caller may retry delivery. Surface it alongside the result.
		return result, err

	case MethodFingerprint:
		if len(req.FingerprintSample) == 0 {
			return nil, ErrMissingPayload
		}
		if err := o.matcher.EnrollFingerprint(ctx, identityID, req.FingerprintSample); err != nil {
			return nil, err
		}
		return &EnrollmentResult{Method: MethodFingerprint}, nil

	case MethodFace:
		if err := o.matcher.EnrollFace(ctx, identityID, req.Sample); err != nil {
			return nil, err
		}
		return &EnrollmentResult{Method: MethodFace}, nil

	case MethodVoice:
		if err := o.matcher.EnrollVoice(ctx, identityID, req.Sample); err != nil {
			return nil, err
		}
		return &EnrollmentResult{Method: MethodVoice}, nil

	default:
		return nil, ErrInvalidMethod
	}
}

// Verify checks the identity's response for the requested method.
//
// Expected negative outcomes — nothing enrolled, wrong code, expired-then-
// purged entries — return (false, nil) so an unauthenticated prober learns
// nothing about enrollment state. Conditions the caller must act on pass
// through typed: ErrCodesExhausted (prompt regeneration), ErrCodeExpired,
// format and dimensionality errors, and ErrInvalidMethod.
func (o *Orchestrator) Verify(ctx context.Context, identityID uuid.UUID, req VerificationRequest) (bool, error) {
	switch req.Method {
	case MethodTOTP:
		ok, err := o.totp.Verify(ctx, identityID, req.Code)
		return o.normalize(ctx, identityID, req.Method, ok, err)

	case MethodBackupCode:
		return o.vault.Consume(ctx, identityID, req.Code)

	case MethodSMS, MethodEmail:
		channel, _ := req.Method.channel()
		ok, err := o.oob.Verify(ctx, identityID, channel, req.Code)
		if errors.Is(err, oob.ErrNoActiveCode) {
			o.logVerifyFailure(ctx, identityID, req.Method, "no_active_code")
			return false, nil
		}
		return ok, err

	case MethodFingerprint:
		ok, err := o.matcher.VerifyFingerprint(ctx, identityID, req.FingerprintSample)
		return o.normalize(ctx, identityID, req.Method, ok, err)

	case MethodFace:
		ok, err := o.matcher.VerifyFace(ctx, identityID, req.Sample)
		return o.normalize(ctx, identityID, req.Method, ok, err)

	case MethodVoice:
		ok, err := o.matcher.VerifyVoice(ctx, identityID, req.Sample)
		return o.normalize(ctx, identityID, req.Method, ok, err)

	default:
		return false, ErrInvalidMethod
	}
}

// AvailableBiometricModalities reports which biometric templates exist for the
// identity, without revealing their content.
func (o *Orchestrator) AvailableBiometricModalities(ctx context.Context, identityID uuid.UUID) (map[biometric.Modality]bool, error) {
	return o.matcher.AvailableModalities(ctx, identityID)
}

// ClearBiometrics irreversibly deletes all biometric templates for the identity.
func (o *Orchestrator) ClearBiometrics(ctx context.Context, identityID uuid.UUID) error {
	return o.matcher.Clear(ctx, identityID)
}

// PreferredMethod returns the identity's default second factor (totp when unset).
func (o *Orchestrator) PreferredMethod(ctx context.Context, identityID uuid.UUID) (Method, error) {
	return o.preferences.Get(ctx, identityID)
}

// SetPreferredMethod stores the identity's default second factor.
func (o *Orchestrator) SetPreferredMethod(ctx context.Context, identityID uuid.UUID, method Method) error {
	return o.preferences.Set(ctx, identityID, method)
}

// normalize collapses not-enrolled outcomes into a plain verification failure
// so the caller-visible response shape never reveals enrollment state.
func (o *Orchestrator) normalize(ctx context.Context, identityID uuid.UUID, method Method, ok bool, err error) (bool, error) {
	if err == nil {
		if !ok {
			o.logVerifyFailure(ctx, identityID, method, "mismatch")
		}
		return ok, nil
	}
	if errors.Is(err, totp.ErrNotEnrolled) || errors.Is(err, biometric.ErrNotEnrolled) {
		o.logVerifyFailure(ctx, identityID, method, "not_enrolled")
		return false, nil
	}
	return false, err
}

func (o *Orchestrator) logVerifyFailure(ctx context.Context, identityID uuid.UUID, method Method, reason string) {
	o.logger.InfoContext(ctx, "second factor verification failed",
		logger.IdentityID(identityID),
		logger.Method(string(method)),
		logger.Reason(reason),
	)
}
