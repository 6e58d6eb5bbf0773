package httpapi

import (
	"time"

	"assessml/internal/config"
)

// maxBodyBytes caps /ml request bodies.
var maxBodyBytes int64 = config.DefaultMaxBodyBytes

// requestTimeout bounds each /ml service call. Zero leaves only the client and
// server contexts in charge.
var requestTimeout time.Duration

var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// Apply copies the HTTP-facing settings of cfg into the package. Call it
// before NewMux; it is not safe to call while serving.
func Apply(cfg config.Config) {
	SetMaxBodyBytes(cfg.MaxBodyBytes)
	SetRequestTimeoutSeconds(cfg.RequestTimeoutSeconds)
	SetRequestLogLevel(cfg.LogLevel)
	SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)
}

// SetMaxBodyBytes sets the body cap; non-positive restores the default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = config.DefaultMaxBodyBytes
	}
	maxBodyBytes = n
}

// SetRequestTimeoutSeconds sets the per-call timeout (0 disables).
func SetRequestTimeoutSeconds(sec int64) {
	requestTimeout = time.Duration(max(sec, 0)) * time.Second
}

// SetCORSOptions enables the CORS middleware. Disabled means no CORS headers.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
