package mfa

import (
	"time"

	"github.com/clinova/mfacore/pkg/biometric"
	"github.com/clinova/mfacore/pkg/oob"
)

// Method identifies a second-factor authentication method.
type Method string

const (
	MethodTOTP        Method = "totp"
	MethodSMS         Method = "sms"
	MethodEmail       Method = "email"
	MethodBackupCode  Method = "backup_code"
	MethodFingerprint Method = "fingerprint"
	MethodFace        Method = "face"
	MethodVoice       Method = "voice"
)

// Valid reports whether the method is one the orchestrator can route.
func (m Method) Valid() bool {
	switch m {
	case MethodTOTP, MethodSMS, MethodEmail, MethodBackupCode,
		MethodFingerprint, MethodFace, MethodVoice:
		return true
	}
	return false
}

// Preferable reports whether the method may be stored as a default preference.
// Biometric methods require a live sample and backup codes are a last resort,
// so neither is ever a silent default.
func (m Method) Preferable() bool {
	return m == MethodTOTP || m == MethodSMS || m == MethodEmail
}

// channel maps an out-of-band method to its delivery channel.
func (m Method) channel() (oob.Channel, bool) {
	switch m {
	case MethodSMS:
		return oob.ChannelSMS, true
	case MethodEmail:
		return oob.ChannelEmail, true
	}
	return "", false
}

// EnrollmentResult carries the outcome of an enrollment. Only the fields
// relevant to the enrolled method are populated. Secret-bearing fields
// (Secret, BackupCodes) are handed out exactly once and are not retrievable
// afterwards.
type EnrollmentResult struct {
	Method Method

	// TOTP enrollment
	Secret          string // plaintext seed, shown once
	ProvisioningURI string // otpauth:// URI for authenticator apps
	QRCode          string // optional base64 PNG data URI of the provisioning URI

	// Backup code generation
	BackupCodes []string // plaintext codes, shown once

	// Out-of-band challenge issuance
	Channel   oob.Channel
	ExpiresAt time.Time
}

// EnrollmentRequest is the orchestrator's generic enrollment payload.
type EnrollmentRequest struct {
	Method Method

	// AccountName labels TOTP provisioning URIs in authenticator apps
	// (typically an email address). Optional; defaults to the identity ID.
	AccountName string

	// Sample is the feature vector for face or voice enrollment, produced by
	// an external encoding model.
	Sample biometric.Vector

	// FingerprintSample is the raw fingerprint scan for fingerprint
	// enrollment. It is hashed immediately and never persisted.
	FingerprintSample []byte
}

// VerificationRequest is the orchestrator's generic verification payload.
type VerificationRequest struct {
	Method Method

	// Code is the numeric or alphanumeric response for totp, sms, email, and
	// backup_code methods.
	Code string

	// Sample is the live feature vector for face or voice verification.
	Sample biometric.Vector

	// FingerprintSample is the live raw scan for fingerprint verification.
	FingerprintSample []byte
}
