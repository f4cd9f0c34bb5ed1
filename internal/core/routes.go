package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"

	"beachscore/internal/types"
)

const defaultRequestTimeout = 15 * time.Second

// Header values masked in request logs.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
}

// MountRoutes installs the global middleware chain, the /v1 group and the
// probe endpoints.
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()

	s.router.Route("/v1", s.mountV1)

	s.router.Get("/health", s.HandleHealth)
	s.router.Get("/version", s.HandleVersion)
}

// registerGlobalMiddleware applies middleware in strict order:
//
//  1. Recoverer       - outermost, catches every panic.
//  2. ContextTimeout  - request deadline.
//  3. RequestID       - correlation ID for logs and error bodies.
//  4. SecurityHeaders
//  5. RequestLogger   - structured log line with redacted headers.
//  6. CORS
//  7. Metrics
//  8. Compression     - gzip for clients that accept it.
//  9. RateLimit       - per client IP.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
	s.router.Use(s.MetricsMiddleware)
	s.router.Use(CompressionMiddleware())
	s.router.Use(s.RateLimit)
}

func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.RequestTimeout > 0 {
		return s.Config.Server.RequestTimeout
	}
	return defaultRequestTimeout
}

func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && len(s.Config.Security.CorsAllowedOrigins) > 0 {
		return s.Config.Security.CorsAllowedOrigins
	}
	return []string{"*"}
}

// ContextTimeoutMiddleware sets a deadline on the request context. Upstream
// provider calls observe it through ctx.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware reuses an incoming X-Request-Id or generates one, stores
// it in the context and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(types.WithRequestID(r.Context(), requestID)))
	})
}

// generateRequestID returns 16 random bytes as hex.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "fallback-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}

// CompressionMiddleware gzips responses for clients that send
// Accept-Encoding: gzip. Small bodies are written uncompressed.
func CompressionMiddleware() func(http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		// Only reachable with invalid static options.
		panic(err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}

type versionResponse struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// HandleVersion reports the linker-injected build metadata.
func (s *Server) HandleVersion(w http.ResponseWriter, r *http.Request) {
	resp := versionResponse{Service: "beachscore"}
	if s.Config != nil {
		resp.Service = s.Config.Service
		resp.Version = s.Config.Build.Version
		resp.Commit = s.Config.Build.Commit
		resp.BuildTime = s.Config.Build.BuildTime
	}
	JSON(w, r, http.StatusOK, resp)
}
