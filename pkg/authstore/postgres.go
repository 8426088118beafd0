package authstore

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinova/mfacore/pkg/backupcode"
	"github.com/clinova/mfacore/pkg/biometric"
	"github.com/clinova/mfacore/pkg/mfa"
	"github.com/clinova/mfacore/pkg/pg"
	"github.com/clinova/mfacore/pkg/totp"
)

// Migrations holds the goose schema migrations for the Postgres store,
// embedded so binaries can apply them with pg.MigrateFS at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Postgres is a pgx-backed implementation of every storage contract in the
// module. Backup-code consumption relies on a single DELETE and its affected
// row count, so concurrent consumers of the same code resolve to exactly one
// winner inside the database — no advisory locks needed.
//
// Schema migrations live under migrations/ and apply with the pg package's
// Migrate helper.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store on an established connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// --- totp.SecretStorage ---

func (p *Postgres) SaveSecret(ctx context.Context, id uuid.UUID, secret string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO mfa_totp_secrets (identity_id, secret, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (identity_id) DO UPDATE SET secret = EXCLUDED.secret, updated_at = now()`,
		id, secret,
	)
	if err != nil {
		return fmt.Errorf("failed to save TOTP secret: %w", err)
	}
	return nil
}

func (p *Postgres) GetSecret(ctx context.Context, id uuid.UUID) (string, error) {
	var secret string
	err := p.pool.QueryRow(ctx,
		`SELECT secret FROM mfa_totp_secrets WHERE identity_id = $1`, id,
	).Scan(&secret)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", totp.ErrNotEnrolled
		}
		return "", fmt.Errorf("failed to get TOTP secret: %w", err)
	}
	return secret, nil
}

func (p *Postgres) DeleteSecret(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx,
		`DELETE FROM mfa_totp_secrets WHERE identity_id = $1`, id,
	); err != nil {
		return fmt.Errorf("failed to delete TOTP secret: %w", err)
	}
	return nil
}

// --- backupcode.Storage ---

func (p *Postgres) ReplaceCodeHashes(ctx context.Context, id uuid.UUID, hashes []string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`DELETE FROM mfa_backup_codes WHERE identity_id = $1`, id,
	); err != nil {
		return fmt.Errorf("failed to clear backup codes: %w", err)
	}

	for _, hash := range hashes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO mfa_backup_codes (identity_id, code_hash) VALUES ($1, $2)`,
			id, hash,
		); err != nil {
			return fmt.Errorf("failed to insert backup code: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit backup codes: %w", err)
	}
	return nil
}

func (p *Postgres) ListCodeHashes(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT code_hash FROM mfa_backup_codes WHERE identity_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup codes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan backup code: %w", err)
		}
		hashes = append(hashes, hash)
	}
	return hashes, rows.Err()
}

// DeleteCodeHash is the atomic check-and-remove behind one-time use: the
// DELETE either removes the row for this caller or reports zero rows because
// a concurrent request already burned the code.
func (p *Postgres) DeleteCodeHash(ctx context.Context, id uuid.UUID, hash string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM mfa_backup_codes WHERE identity_id = $1 AND code_hash = $2`,
		id, hash,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete backup code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// --- biometric.TemplateStorage ---

func (p *Postgres) SaveFingerprint(ctx context.Context, id uuid.UUID, tpl biometric.FingerprintTemplate) error {
	return p.saveTemplate(ctx, id, biometric.ModalityFingerprint, tpl)
}

func (p *Postgres) GetFingerprint(ctx context.Context, id uuid.UUID) (biometric.FingerprintTemplate, error) {
	var tpl biometric.FingerprintTemplate
	if err := p.getTemplate(ctx, id, biometric.ModalityFingerprint, &tpl); err != nil {
		return biometric.FingerprintTemplate{}, err
	}
	return tpl, nil
}

func (p *Postgres) SaveVectorTemplate(ctx context.Context, id uuid.UUID, modality biometric.Modality, tpl biometric.VectorTemplate) error {
	return p.saveTemplate(ctx, id, modality, tpl)
}

func (p *Postgres) GetVectorTemplate(ctx context.Context, id uuid.UUID, modality biometric.Modality) (biometric.VectorTemplate, error) {
	var tpl biometric.VectorTemplate
	if err := p.getTemplate(ctx, id, modality, &tpl); err != nil {
		return biometric.VectorTemplate{}, err
	}
	return tpl, nil
}

func (p *Postgres) DeleteAllTemplates(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx,
		`DELETE FROM mfa_biometric_templates WHERE identity_id = $1`, id,
	); err != nil {
		return fmt.Errorf("failed to delete biometric templates: %w", err)
	}
	return nil
}

func (p *Postgres) ListModalities(ctx context.Context, id uuid.UUID) ([]biometric.Modality, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT modality FROM mfa_biometric_templates WHERE identity_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list biometric modalities: %w", err)
	}
	defer rows.Close()

	var modalities []biometric.Modality
	for rows.Next() {
		var modality string
		if err := rows.Scan(&modality); err != nil {
			return nil, fmt.Errorf("failed to scan modality: %w", err)
		}
		modalities = append(modalities, biometric.Modality(modality))
	}
	return modalities, rows.Err()
}

func (p *Postgres) saveTemplate(ctx context.Context, id uuid.UUID, modality biometric.Modality, tpl any) error {
	payload, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("failed to encode %s template: %w", modality, err)
	}
	if _, err := p.pool.Exec(ctx, `
		INSERT INTO mfa_biometric_templates (identity_id, modality, template, enrolled_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (identity_id, modality) DO UPDATE SET template = EXCLUDED.template, enrolled_at = now()`,
		id, string(modality), payload,
	); err != nil {
		return fmt.Errorf("failed to save %s template: %w", modality, err)
	}
	return nil
}

func (p *Postgres) getTemplate(ctx context.Context, id uuid.UUID, modality biometric.Modality, out any) error {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT template FROM mfa_biometric_templates WHERE identity_id = $1 AND modality = $2`,
		id, string(modality),
	).Scan(&payload)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return biometric.ErrNotEnrolled
		}
		return fmt.Errorf("failed to get %s template: %w", modality, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode %s template: %w", modality, err)
	}
	return nil
}

// --- mfa.PreferenceStorage ---

func (p *Postgres) GetPreferredMethod(ctx context.Context, id uuid.UUID) (mfa.Method, error) {
	var method string
	err := p.pool.QueryRow(ctx,
		`SELECT method FROM mfa_method_preferences WHERE identity_id = $1`, id,
	).Scan(&method)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", mfa.ErrPreferenceNotSet
		}
		return "", fmt.Errorf("failed to get method preference: %w", err)
	}
	return mfa.Method(method), nil
}

func (p *Postgres) SetPreferredMethod(ctx context.Context, id uuid.UUID, method mfa.Method) error {
	if _, err := p.pool.Exec(ctx, `
		INSERT INTO mfa_method_preferences (identity_id, method, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (identity_id) DO UPDATE SET method = EXCLUDED.method, updated_at = now()`,
		id, string(method),
	); err != nil {
		return fmt.Errorf("failed to set method preference: %w", err)
	}
	return nil
}

// Compile-time checks that Postgres satisfies every storage contract.
var (
	_ totp.SecretStorage        = (*Postgres)(nil)
	_ backupcode.Storage        = (*Postgres)(nil)
	_ biometric.TemplateStorage = (*Postgres)(nil)
	_ mfa.PreferenceStorage     = (*Postgres)(nil)
)
