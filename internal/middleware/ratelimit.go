package middleware

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const defaultRatelimitRate = "10-S"

// RateLimit returns middleware that uses ulule/limiter with Redis. The rate
// uses ulule's formatted notation, e.g. "10-S" for ten requests per second.
func RateLimit(redisClient *redis.Client, rate string) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = defaultRatelimitRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(store, parsed)
	mw := stdlibmw.NewMiddleware(instance)
	return mw.Handler, nil
}
