package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
)

// Origins is an origin allow-list that can be replaced while requests are
// being served. Entries are exact origins, "*" or "*.example.com".
type Origins struct {
	list atomic.Pointer[[]string]
}

// NewOrigins returns an allow-list holding a copy of list.
func NewOrigins(list []string) *Origins {
	o := &Origins{}
	o.Set(list)
	return o
}

// Set replaces the allow-list.
func (o *Origins) Set(list []string) {
	cp := slices.Clone(list)
	o.list.Store(&cp)
}

// List returns a copy of the current allow-list.
func (o *Origins) List() []string {
	return slices.Clone(*o.list.Load())
}

// Allowed reports whether origin matches an entry.
func (o *Origins) Allowed(origin string) bool {
	return originAllowed(*o.list.Load(), origin)
}

type CORSConfig struct {
	// AllowedOrigins seeds the allow-list when Origins is nil.
	AllowedOrigins []string
	// Origins, when set, is consulted on every request so the list can be
	// reloaded.
	Origins *Origins

	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows any origin to call the API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	}
}

func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.Origins
	if origins == nil {
		origins = NewOrigins(cfg.AllowedOrigins)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !origins.Allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ", "))

			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}

			// Preflight requests never reach the API handlers.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
		if strings.HasPrefix(o, "*.") && strings.HasSuffix(origin, o[1:]) {
			return true
		}
	}
	return false
}

// OriginChecker returns a websocket-style origin check over the same
// allow-list CORS uses. Requests without an Origin header (non-browser
// clients) are accepted.
func OriginChecker(origins *Origins) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origins.Allowed(origin)
	}
}
