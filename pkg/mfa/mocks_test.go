package mfa_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/clinova/mfacore/pkg/mfa"
)

// MockPreferenceStorage is a mock implementation of PreferenceStorage.
type MockPreferenceStorage struct {
	mock.Mock
}

func (m *MockPreferenceStorage) GetPreferredMethod(ctx context.Context, identityID uuid.UUID) (mfa.Method, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).(mfa.Method), args.Error(1)
}

func (m *MockPreferenceStorage) SetPreferredMethod(ctx context.Context, identityID uuid.UUID, method mfa.Method) error {
	args := m.Called(ctx, identityID, method)
	return args.Error(0)
}
