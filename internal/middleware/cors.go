package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultOrigins = []string{"http://localhost:3000"}

// CORS allows the local storefront dev server.
func CORS(next http.Handler) http.Handler {
	return CORSFor(defaultOrigins)(next)
}

// CORSFor allows credentialed requests from the given origins.
func CORSFor(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Device-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
