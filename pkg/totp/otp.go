package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits = 6      // Standard 6-digit TOTP codes
	DefaultPeriod = 30     // 30-second validity window (RFC 6238 standard)
	DefaultSkew   = 1      // Accept one time step before and after the current one
	Algorithm     = "SHA1" // HMAC-SHA1 algorithm (RFC 6238 standard)

	secretByteLen = 20 // 160-bit seed (RFC 4226 recommendation)
)

var (
	// SecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	SecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// URIParams contains the parameters for provisioning URI generation.
type URIParams struct {
	Secret      string // Base32-encoded TOTP seed (required)
	AccountName string // User identifier shown in authenticator apps (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Digits      int    // Number of digits in generated codes (optional, defaults to 6)
	Period      int    // Code validity period in seconds (optional, defaults to 30)
}

// Validate ensures all required URI parameters are present and well-formed.
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !SecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecretKey generates a new Base32-encoded random seed for TOTP enrollment.
func GenerateSecretKey() (string, error) {
	seed := make([]byte, secretByteLen)
	if _, err := rand.Read(seed); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return b32.EncodeToString(seed), nil
}

// ProvisioningURI creates a properly encoded otpauth:// URI for authenticator apps.
// The URI format follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
// Rendering the URI to a QR image is the caller's responsibility.
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	if params.Digits == 0 {
		params.Digits = DefaultDigits
	}
	if params.Period == 0 {
		params.Period = DefaultPeriod
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", Algorithm)
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
// The algorithm converts a counter value into a numeric code using HMAC-SHA1.
func GenerateHOTP(key []byte, counter int64, digits int) int {
	// Convert counter to big-endian 8-byte array (RFC 4226 requirement)
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation (RFC 4226): use last 4 bits as offset into hash
	offset := hash[len(hash)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}

// GenerateCode generates the TOTP code for the time window containing t.
// The secret must be a valid Base32-encoded string.
func GenerateCode(secret string, t time.Time, digits, period int) (string, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !SecretKeyRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}

	key, err := b32.DecodeString(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}

	counter := t.Unix() / int64(period)
	code := GenerateHOTP(key, counter, digits)

	return fmt.Sprintf("%0*d", digits, code), nil
}

// ValidateCode checks a user-supplied code against the secret for the time window
// containing t, accepting skew adjacent windows on either side for clock drift.
func ValidateCode(secret, code string, t time.Time, digits, period, skew int) (bool, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !SecretKeyRegex.MatchString(secret) {
		return false, ErrInvalidSecret
	}

	key, err := b32.DecodeString(secret)
	if err != nil {
		return false, errors.Join(ErrFailedToValidateCode, err)
	}

	code = strings.TrimSpace(code)
	if !regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, digits)).MatchString(code) {
		return false, ErrInvalidCodeFormat
	}

	counter := t.Unix() / int64(period)

	// Check every window in the skew range even after a match so the total
	// work does not depend on which window matched.
	match := 0
	for i := -skew; i <= skew; i++ {
		want := fmt.Sprintf("%0*d", digits, GenerateHOTP(key, counter+int64(i), digits))
		match |= subtle.ConstantTimeCompare([]byte(want), []byte(code))
	}

	return match == 1, nil
}
