package oob

import (
	"time"

	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config holds environment-driven settings for the out-of-band code service.
type Config struct {
	TTL        time.Duration `env:"OOB_CODE_TTL" envDefault:"5m"`   // Lifetime of an issued code
	CodeLength int           `env:"OOB_CODE_LENGTH" envDefault:"6"` // Digits per code
}
