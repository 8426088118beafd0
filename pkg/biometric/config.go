package biometric

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config holds environment-driven matcher settings. Threshold defaults come
// from operational use, not a calibrated error-rate analysis; tune per
// deployment.
type Config struct {
	FaceThreshold  float64 `env:"BIOMETRIC_FACE_THRESHOLD" envDefault:"0.6"`
	VoiceThreshold float64 `env:"BIOMETRIC_VOICE_THRESHOLD" envDefault:"0.7"`
	KDFIterations  int     `env:"BIOMETRIC_KDF_ITERATIONS" envDefault:"100000"`
}
