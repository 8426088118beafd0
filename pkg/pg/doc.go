// Package pg bootstraps the PostgreSQL layer behind authstore.Postgres: a
// pgx/v5 connection pool with retrying startup, goose schema migrations, and
// the error helpers the storage code needs to classify driver failures.
//
// # Building blocks
//
//   - Config — pool limits, retry cadence and migration location, populated
//     from PG_* environment variables via github.com/caarlos0/env.
//   - Connect — opens a *pgxpool.Pool from Config, retrying with a growing
//     back-off until the database answers a ping.
//   - Migrate / MigrateFS — apply goose migrations from a directory or an
//     embedded fs.FS before the pool is handed to the stores.
//
// # Usage
//
//	cfg, err := env.ParseAs[pg.Config]()
//	if err != nil {
//	    log.Error("invalid postgres config", "error", err)
//	    os.Exit(1)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Error("postgres unavailable", "error", err)
//	    os.Exit(1)
//	}
//	defer pool.Close()
//
//	if err := pg.MigrateFS(ctx, pool, authstore.Migrations, "migrations", cfg, log); err != nil {
//	    log.Error("migrations failed", "error", err)
//	    os.Exit(1)
//	}
//
//	store := authstore.NewPostgres(pool)
//
// Healthcheck wraps the pool's ping into a func(context.Context) error for
// liveness and readiness probes.
package pg
