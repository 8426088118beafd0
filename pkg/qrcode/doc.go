// Package qrcode renders strings as QR code images, used during TOTP
// enrollment to present otpauth:// provisioning URIs to authenticator apps.
//
// Rendering is strictly optional: the enrollment flow always returns the raw
// URI, and callers that render elsewhere can ignore this package entirely.
package qrcode
