package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/gerfey/planit/pkg/config"
)

const rateLimitPrefix = "planit:ratelimit"

// NewRateLimiter создает лимитер фиксированного окна по IP клиента.
// При client == nil счетчики хранятся в памяти процесса.
func NewRateLimiter(cfg config.RateLimitConfig, client *redis.Client) (*limiter.Limiter, error) {
	rate := limiter.Rate{
		Period: cfg.Window,
		Limit:  cfg.Max,
	}

	if client == nil {
		return limiter.New(memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), rate), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, err
	}

	return limiter.New(store, rate), nil
}

func (h *Handler) rateLimitMiddleware() gin.HandlerFunc {
	if h.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return mgin.NewMiddleware(h.limiter,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			h.logger.Warnf("Превышен лимит запросов для %s на %s", c.ClientIP(), c.Request.URL.Path)
			if h.metrics != nil {
				h.metrics.rateLimited.Inc()
			}
			abortWithError(c, NewError(http.StatusTooManyRequests, msgTooManyRequests))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			abortWithError(c, err)
		}),
	)
}
