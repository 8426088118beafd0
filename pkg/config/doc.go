// Package config provides a type-safe, generic and cached way to load the
// module's configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 behind a
// small API:
//
//   - LoadEnv loads one or more .env files into the process environment.
//   - Load parses the environment into any struct with `env` field tags and
//     caches the result per type, so repeated loads are free.
//   - MustLoadEnv and MustLoad panic on failure for configuration the process
//     cannot start without.
//   - ResetCache and ForceReloadConfig support tests that mutate the
//     environment.
//
// Every service package in the module ships a Config struct the loader
// understands:
//
//	var totpCfg totp.Config
//	var pgCfg pg.Config
//	config.MustLoad(&totpCfg)
//	config.MustLoad(&pgCfg)
//
//	engine := totp.NewEngine(store, totpCfg.Issuer,
//	    totp.WithDigits(totpCfg.Digits),
//	    totp.WithPeriod(totpCfg.Period),
//	    totp.WithSkew(totpCfg.Skew),
//	)
//
// The cache keys on the struct's type name and stores copies by value, so a
// successfully loaded type is parsed exactly once per process regardless of
// how many goroutines ask for it.
package config
