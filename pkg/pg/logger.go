package pg

import "context"

// logger is the subset of slog the migration helpers need, kept as an
// interface so goose output can be routed through whatever structured logger
// the application runs.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
