package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	apiBaseURLVar    = "API_BASE_URL"
	requestTimeout   = "API_REQUEST_TIMEOUT"
	sessionFileVar   = "SESSION_FILE"
	sessionKeyVar    = "SESSION_KEY"
	redisAddrVar     = "REDIS_ADDR"
	storageNamespace = "STORAGE_NAMESPACE"
)

// loadDotEnv pulls a local .env into the process environment when present.
func loadDotEnv() {
	_ = godotenv.Load()
}

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Inventory Console")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the dashboard API root every request is issued
// against, e.g. "https://inventory.example.com/api".
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8000/api")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	raw := GetEnv(requestTimeout, "30s")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (EnvVars) GetSessionFile() string {
	return GetEnv(sessionFileVar, defaultSessionFile())
}

// GetSessionKey returns the base64-encoded 32-byte key used to seal the
// persisted session, or nil when none is configured.
func (EnvVars) GetSessionKey() []byte {
	raw := GetEnv(sessionKeyVar, "")
	if raw == "" {
		return nil
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	return key
}

// GetRedisAddr returns the Redis address for shared session storage; empty
// selects the file-backed store.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetStorageNamespace() string {
	return GetEnv(storageNamespace, "inventory-console")
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inventory-console/session.json"
	}
	return home + "/.inventory-console/session.json"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
