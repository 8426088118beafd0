package mfa

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PreferenceStorage persists each identity's default second-factor method.
// Get must return ErrPreferenceNotSet for identities that never chose one.
type PreferenceStorage interface {
	GetPreferredMethod(ctx context.Context, identityID uuid.UUID) (Method, error)
	SetPreferredMethod(ctx context.Context, identityID uuid.UUID, method Method) error
}

// Preferences tracks which method an identity prefers, used by callers for UI
// ordering and fallback.
type Preferences struct {
	storage PreferenceStorage
}

// NewPreferences creates a preference service bound to the given storage.
func NewPreferences(storage PreferenceStorage) *Preferences {
	return &Preferences{storage: storage}
}

// Get returns the identity's preferred method, defaulting to totp when none
// was ever set.
func (p *Preferences) Get(ctx context.Context, identityID uuid.UUID) (Method, error) {
	method, err := p.storage.GetPreferredMethod(ctx, identityID)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotSet) {
			return MethodTOTP, nil
		}
		return "", fmt.Errorf("failed to get method preference: %w", err)
	}
	return method, nil
}

// Set stores the identity's preferred method. Only totp, sms, and email are
// accepted; anything else is rejected with ErrInvalidMethod and the prior
// preference is left unchanged.
func (p *Preferences) Set(ctx context.Context, identityID uuid.UUID, method Method) error {
	if !method.Preferable() {
		return ErrInvalidMethod
	}
	if err := p.storage.SetPreferredMethod(ctx, identityID, method); err != nil {
		return fmt.Errorf("failed to set method preference: %w", err)
	}
	return nil
}
