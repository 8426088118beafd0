// Package authstore provides ready-made implementations of the module's
// storage contracts: totp.SecretStorage, backupcode.Storage,
// biometric.TemplateStorage, and mfa.PreferenceStorage.
//
// Memory keeps everything in process with one lock per identity — operations
// on different identities never contend, and backup-code consumption remains
// an atomic check-and-remove within an identity. It backs tests and
// single-node deployments.
//
// Postgres persists the same contracts on a pgx/v5 connection pool. One-time
// backup-code semantics lean on the database: a single DELETE's affected-row
// count decides which of any number of concurrent consumers wins. Biometric
// templates are stored as jsonb, one row per (identity, modality), upserted on
// re-enrollment. Schema migrations live under migrations/ in goose format and
// apply with pg.Migrate.
package authstore
