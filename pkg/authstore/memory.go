package authstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/clinova/mfacore/pkg/backupcode"
	"github.com/clinova/mfacore/pkg/biometric"
	"github.com/clinova/mfacore/pkg/mfa"
	"github.com/clinova/mfacore/pkg/totp"
)

// identityRecord holds everything the factor services persist for one identity.
type identityRecord struct {
	mu          sync.Mutex
	totpSecret  string
	hasTOTP     bool
	backupCodes map[string]struct{}
	fingerprint *biometric.FingerprintTemplate
	vectors     map[biometric.Modality]biometric.VectorTemplate
	preference  mfa.Method
}

// Memory is an in-process implementation of every storage contract in the
// module: totp.SecretStorage, backupcode.Storage, biometric.TemplateStorage,
// and mfa.PreferenceStorage. Each identity gets its own lock, so operations on
// different identities never contend and backup-code consumption stays a true
// atomic check-and-remove within an identity.
//
// Suitable for tests and single-node deployments; use Postgres for anything
// that must survive a restart or span nodes.
type Memory struct {
	mu      sync.Mutex
	records map[uuid.UUID]*identityRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[uuid.UUID]*identityRecord)}
}

// record returns the identity's record, creating it on first touch.
func (m *Memory) record(id uuid.UUID) *identityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		rec = &identityRecord{
			backupCodes: make(map[string]struct{}),
			vectors:     make(map[biometric.Modality]biometric.VectorTemplate),
		}
		m.records[id] = rec
	}
	return rec
}

// --- totp.SecretStorage ---

func (m *Memory) SaveSecret(_ context.Context, id uuid.UUID, secret string) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.totpSecret = secret
	rec.hasTOTP = true
	return nil
}

func (m *Memory) GetSecret(_ context.Context, id uuid.UUID) (string, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.hasTOTP {
		return "", totp.ErrNotEnrolled
	}
	return rec.totpSecret, nil
}

func (m *Memory) DeleteSecret(_ context.Context, id uuid.UUID) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.totpSecret = ""
	rec.hasTOTP = false
	return nil
}

// --- backupcode.Storage ---

func (m *Memory) ReplaceCodeHashes(_ context.Context, id uuid.UUID, hashes []string) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	rec.backupCodes = set
	return nil
}

func (m *Memory) ListCodeHashes(_ context.Context, id uuid.UUID) ([]string, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]string, 0, len(rec.backupCodes))
	for h := range rec.backupCodes {
		out = append(out, h)
	}
	return out, nil
}

func (m *Memory) DeleteCodeHash(_ context.Context, id uuid.UUID, hash string) (bool, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.backupCodes[hash]; !ok {
		return false, nil
	}
	delete(rec.backupCodes, hash)
	return true, nil
}

// --- biometric.TemplateStorage ---

func (m *Memory) SaveFingerprint(_ context.Context, id uuid.UUID, tpl biometric.FingerprintTemplate) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.fingerprint = &tpl
	return nil
}

func (m *Memory) GetFingerprint(_ context.Context, id uuid.UUID) (biometric.FingerprintTemplate, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.fingerprint == nil {
		return biometric.FingerprintTemplate{}, biometric.ErrNotEnrolled
	}
	return *rec.fingerprint, nil
}

func (m *Memory) SaveVectorTemplate(_ context.Context, id uuid.UUID, modality biometric.Modality, tpl biometric.VectorTemplate) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.vectors[modality] = tpl
	return nil
}

func (m *Memory) GetVectorTemplate(_ context.Context, id uuid.UUID, modality biometric.Modality) (biometric.VectorTemplate, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	tpl, ok := rec.vectors[modality]
	if !ok {
		return biometric.VectorTemplate{}, biometric.ErrNotEnrolled
	}
	return tpl, nil
}

func (m *Memory) DeleteAllTemplates(_ context.Context, id uuid.UUID) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.fingerprint = nil
	rec.vectors = make(map[biometric.Modality]biometric.VectorTemplate)
	return nil
}

func (m *Memory) ListModalities(_ context.Context, id uuid.UUID) ([]biometric.Modality, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []biometric.Modality
	if rec.fingerprint != nil {
		out = append(out, biometric.ModalityFingerprint)
	}
	for modality := range rec.vectors {
		out = append(out, modality)
	}
	return out, nil
}

// --- mfa.PreferenceStorage ---

func (m *Memory) GetPreferredMethod(_ context.Context, id uuid.UUID) (mfa.Method, error) {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.preference == "" {
		return "", mfa.ErrPreferenceNotSet
	}
	return rec.preference, nil
}

func (m *Memory) SetPreferredMethod(_ context.Context, id uuid.UUID, method mfa.Method) error {
	rec := m.record(id)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.preference = method
	return nil
}

// Compile-time checks that Memory satisfies every storage contract.
var (
	_ totp.SecretStorage        = (*Memory)(nil)
	_ backupcode.Storage        = (*Memory)(nil)
	_ biometric.TemplateStorage = (*Memory)(nil)
	_ mfa.PreferenceStorage     = (*Memory)(nil)
)
