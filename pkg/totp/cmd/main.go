package main

import (
	"encoding/base64"
	"fmt"
	"log"

	"github.com/clinova/mfacore/pkg/totp"
)

func main() {
	// Generate a base64-encoded encryption key for environment variables
	key, err := totp.GenerateEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}

	fmt.Printf("Generated Encryption Key (for TOTP_ENCRYPTION_KEY env var): \n———\n%s\n———\n", base64.StdEncoding.EncodeToString(key))
}
