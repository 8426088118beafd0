// Package redis connects the module to a Redis server. Its main consumer is
// oob.RedisCache, which keeps out-of-band challenge codes in Redis so several
// instances can issue and verify against the same state.
//
// The package wraps the go-redis client with:
//
//   - Connect, which retries the connection per the supplied configuration
//     until the server answers a ping or the attempts run out.
//   - Healthcheck, a func(context.Context) error for liveness and readiness
//     probes.
//
// Configuration comes from REDIS_* environment variables via
// github.com/caarlos0/env:
//
//	cfg, err := env.ParseAs[redis.Config]()
//	if err != nil {
//	    return err
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	cache := oob.NewRedisCache(client)
package redis
