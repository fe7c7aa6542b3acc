package config

import (
	"log/slog"
	"sync"
)

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BaseURL   string
	LogLevel  string
	LogFormat string
	UploadDir string
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = newAppConfig()
	})
	return appConfig
}

func newAppConfig() *AppConfig {
	env := getEnv("APP_ENV", "")
	if env == "" {
		env = "development"
		slog.Warn("APP_ENV not set, using default", "env", env)
	}
	return &AppConfig{
		Name:      getEnv("APP_NAME", "SkillWise"),
		Env:       env,
		Port:      getEnv("APP_PORT", ":8080"),
		BaseURL:   getEnv("APP_URL", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UploadDir: getEnv("UPLOAD_DIR", ""),
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
