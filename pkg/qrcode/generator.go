package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerate is returned when the QR code generation fails.
	ErrFailedToGenerate = errors.New("failed to generate QR code")
)

// defaultSize is the size in pixels used when no size is specified
const defaultSize = 256

// Generate renders content — typically an otpauth:// provisioning URI — as a
// PNG QR code. Returns the image bytes or an error if generation fails.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return png, nil
}

// DataURI renders content as a QR code and returns it as a base64 PNG data
// URI, ready to drop into an <img src="..."> during authenticator onboarding.
func DataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
