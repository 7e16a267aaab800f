package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Upstream coffee-shop platform API. The service signs in with its own
	// operator account; dashboard sessions never hold upstream tokens.
	UpstreamBaseURL        string
	UpstreamSocketURL      string
	UpstreamRequestTimeout time.Duration
	UpstreamEmail          string
	UpstreamPassword       string

	// Notification socket reconnection policy.
	SocketReconnectAttempts int
	SocketReconnectDelay    time.Duration
	SocketHandshakeTimeout  time.Duration

	// Dashboard sessions.
	SessionSecret        string
	SessionExpirySeconds int64
	GatePasswordHash     string

	CorsAllowedOrigins  []string
	WSHeartbeatInterval time.Duration
	MaxFileSizeBytes    int64
	ImageMaxSide        int
	ImageJPEGQuality    int

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

func Load() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8090"),

		UpstreamBaseURL:        getEnv("UPSTREAM_API_BASE_URL", "https://api.rafinecoffeeshop.com.tr"),
		UpstreamSocketURL:      getEnv("UPSTREAM_SOCKET_URL", ""),
		UpstreamRequestTimeout: getEnvDuration("UPSTREAM_REQUEST_TIMEOUT", 15*time.Second),
		UpstreamEmail:          getEnv("UPSTREAM_ADMIN_EMAIL", ""),
		UpstreamPassword:       getEnv("UPSTREAM_ADMIN_PASSWORD", ""),

		SocketReconnectAttempts: getEnvInt("SOCKET_RECONNECT_ATTEMPTS", 5),
		SocketReconnectDelay:    getEnvDuration("SOCKET_RECONNECT_DELAY", time.Second),
		SocketHandshakeTimeout:  getEnvDuration("SOCKET_HANDSHAKE_TIMEOUT", 10*time.Second),

		SessionSecret:        getEnv("SESSION_JWT_SECRET", ""),
		SessionExpirySeconds: getEnvInt64("SESSION_JWT_EXPIRY", 43200),
		GatePasswordHash:     getEnv("GATE_PASSWORD_HASH", ""),

		CorsAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		WSHeartbeatInterval: getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),
		MaxFileSizeBytes:    getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		ImageMaxSide:        getEnvInt("IMAGE_MAX_SIDE", 1600),
		ImageJPEGQuality:    getEnvInt("IMAGE_JPEG_QUALITY", 82),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreRegion:          getEnv("OBJECT_STORE_REGION", "auto"),
		ObjectStoreAccessKeyID:     getEnv("OBJECT_STORE_ACCESS_KEY_ID", ""),
		ObjectStoreSecretAccessKey: getEnv("OBJECT_STORE_SECRET_ACCESS_KEY", ""),
		ObjectStoreBucket:          getEnv("OBJECT_STORE_BUCKET", ""),
		ObjectStorePublicBaseURL:   getEnv("OBJECT_STORE_PUBLIC_BASE_URL", ""),
		ObjectStoreStorageClass:    getEnv("OBJECT_STORE_STORAGE_CLASS", "STANDARD"),
	}

	if cfg.UpstreamSocketURL == "" {
		cfg.UpstreamSocketURL = deriveSocketURL(cfg.UpstreamBaseURL)
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if cfg.SocketReconnectAttempts <= 0 {
		cfg.SocketReconnectAttempts = 5
	}

	return cfg
}

// deriveSocketURL maps the REST base URL to the platform notification socket
// endpoint when UPSTREAM_SOCKET_URL is not set explicitly.
func deriveSocketURL(baseURL string) string {
	socket := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	socket = strings.Replace(socket, "https://", "wss://", 1)
	socket = strings.Replace(socket, "http://", "ws://", 1)
	return socket + "/socket"
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	return int(getEnvInt64(key, int64(fallback)))
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
