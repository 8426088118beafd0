package biometric

import "errors"

var (
	ErrNotEnrolled       = errors.New("no biometric template enrolled for modality")
	ErrInvalidSample     = errors.New("invalid biometric sample")
	ErrDimensionMismatch = errors.New("sample dimensionality does not match enrolled template")
	ErrFailedToEnroll    = errors.New("failed to enroll biometric template")
)
