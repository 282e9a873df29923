package config

import "time"

type Config interface {
	GetAppName() string
	GetEnv() string
	GetPort() string

	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration

	GetSessionFile() string
	GetSessionKey() []byte
	GetRedisAddr() string
	GetStorageNamespace() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	loadDotEnv()
	return mainConfig{}
}
