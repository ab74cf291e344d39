package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"listing-reel-backend/internal/models"
)

// NewRateLimitStore keeps counters in Redis when a client is given, so every
// replica shares one budget per IP. Otherwise counters are per process.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStore(), nil
	}
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "listing_reel_limiter",
		MaxRetry: 3,
	})
}

// NewIPRateLimiter limits by client IP. rateFormatted: "30-M", "1000-H".
// Empty disables.
func NewIPRateLimiter(rateFormatted string, store limiter.Store) (gin.HandlerFunc, error) {
	if rateFormatted == "" {
		return func(c *gin.Context) { c.Next() }, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(store, rate)
	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "rate limit exceeded"})
	})), nil
}
