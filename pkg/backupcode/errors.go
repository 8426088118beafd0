package backupcode

import "errors"

var (
	ErrCodesExhausted       = errors.New("all backup codes consumed")
	ErrFailedToGenerateCode = errors.New("failed to generate backup code")
)
