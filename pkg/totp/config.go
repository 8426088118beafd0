package totp

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config holds environment-driven TOTP settings.
// EncryptionKey is optional; when set it must be a base64-encoded 32-byte key
// and enrolled seeds are encrypted at rest with AES-256-GCM.
type Config struct {
	Issuer        string `env:"TOTP_ISSUER,required"`            // Service name shown in authenticator apps
	Digits        int    `env:"TOTP_DIGITS" envDefault:"6"`      // Number of digits in generated codes
	Period        int    `env:"TOTP_PERIOD" envDefault:"30"`     // Code validity period in seconds
	Skew          int    `env:"TOTP_SKEW" envDefault:"1"`        // Accepted clock-drift windows on each side
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`             // Base64-encoded 32-byte AES-256 key (optional)
}
