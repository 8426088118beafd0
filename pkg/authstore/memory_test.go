package authstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinova/mfacore/pkg/authstore"
	"github.com/clinova/mfacore/pkg/biometric"
	"github.com/clinova/mfacore/pkg/mfa"
	"github.com/clinova/mfacore/pkg/totp"
)

func TestMemory_TOTPSecrets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authstore.NewMemory()
	id := uuid.New()

	_, err := store.GetSecret(ctx, id)
	assert.ErrorIs(t, err, totp.ErrNotEnrolled)

	require.NoError(t, store.SaveSecret(ctx, id, "SECRETONE"))
	secret, err := store.GetSecret(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SECRETONE", secret)

	// Overwrite on re-enrollment
	require.NoError(t, store.SaveSecret(ctx, id, "SECRETTWO"))
	secret, err = store.GetSecret(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SECRETTWO", secret)

	require.NoError(t, store.DeleteSecret(ctx, id))
	_, err = store.GetSecret(ctx, id)
	assert.ErrorIs(t, err, totp.ErrNotEnrolled)
}

func TestMemory_BackupCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authstore.NewMemory()
	id := uuid.New()

	require.NoError(t, store.ReplaceCodeHashes(ctx, id, []string{"h1", "h2", "h3"}))

	hashes, err := store.ListCodeHashes(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"h1", "h2", "h3"}, hashes)

	deleted, err := store.DeleteCodeHash(ctx, id, "h2")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteCodeHash(ctx, id, "h2")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete of the same hash must lose")

	// Replace wipes the remainder
	require.NoError(t, store.ReplaceCodeHashes(ctx, id, []string{"n1"}))
	hashes, err = store.ListCodeHashes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, hashes)
}

func TestMemory_DeleteCodeHashConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authstore.NewMemory()
	id := uuid.New()

	require.NoError(t, store.ReplaceCodeHashes(ctx, id, []string{"hash"}))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deleted, err := store.DeleteCodeHash(ctx, id, "hash")
			assert.NoError(t, err)
			if deleted {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestMemory_BiometricTemplates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authstore.NewMemory()
	id := uuid.New()

	_, err := store.GetFingerprint(ctx, id)
	assert.ErrorIs(t, err, biometric.ErrNotEnrolled)

	fp := biometric.FingerprintTemplate{Salt: []byte("salt"), Hash: []byte("hash"), Iterations: 1000}
	require.NoError(t, store.SaveFingerprint(ctx, id, fp))

	got, err := store.GetFingerprint(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	face := biometric.VectorTemplate{Vector: biometric.Vector{1, 2, 3}, EnrolledAt: time.Now()}
	require.NoError(t, store.SaveVectorTemplate(ctx, id, biometric.ModalityFace, face))

	modalities, err := store.ListModalities(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []biometric.Modality{biometric.ModalityFingerprint, biometric.ModalityFace}, modalities)

	require.NoError(t, store.DeleteAllTemplates(ctx, id))
	require.NoError(t, store.DeleteAllTemplates(ctx, id)) // idempotent

	modalities, err = store.ListModalities(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, modalities)
}

func TestMemory_Preferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authstore.NewMemory()
	id := uuid.New()

	_, err := store.GetPreferredMethod(ctx, id)
	assert.ErrorIs(t, err, mfa.ErrPreferenceNotSet)

	require.NoError(t, store.SetPreferredMethod(ctx, id, mfa.MethodSMS))
	method, err := store.GetPreferredMethod(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, mfa.MethodSMS, method)
}

func TestMemory_IdentitiesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := authstore.NewMemory()
	idA, idB := uuid.New(), uuid.New()

	require.NoError(t, store.SaveSecret(ctx, idA, "SECRETA"))

	_, err := store.GetSecret(ctx, idB)
	assert.ErrorIs(t, err, totp.ErrNotEnrolled)
}
