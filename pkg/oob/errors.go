package oob

import "errors"

var (
	ErrNoActiveCode         = errors.New("no active verification code for identity and channel")
	ErrCodeExpired          = errors.New("verification code expired")
	ErrUnsupportedChannel   = errors.New("unsupported delivery channel")
	ErrDispatchFailed       = errors.New("failed to dispatch verification code")
	ErrFailedToGenerateCode = errors.New("failed to generate verification code")
)
