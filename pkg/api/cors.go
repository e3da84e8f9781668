package api

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/gerfey/planit/pkg/config"
)

// WithCORS оборачивает обработчик: разрешены origin из списка и подходящие под шаблон.
func WithCORS(next http.Handler, cfg config.CORSConfig) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			if slices.Contains(cfg.AllowedOrigins, origin) {
				return true
			}

			return cfg.OriginPattern != nil && cfg.OriginPattern.MatchString(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
