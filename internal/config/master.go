package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

type AppConfig struct {
	DebugMode      bool
	LogConfig      *LogConfig
	PoolConfig     *PoolConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
	AdminConfig    *AdminConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		LogConfig:      NewLogConfig(),
		PoolConfig:     NewPoolConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
		AdminConfig:    NewAdminConfig(),
	}
}

// LoadEnv loads environment variables from envFile. With an empty name the
// default .env is loaded when it exists; an explicitly named file must exist.
// Variables already set in the process environment win.
func LoadEnv(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		envFile = defaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("error loading %s: %w", envFile, err)
	}
	return nil
}

// Load reads envFile and builds the configuration from the environment
func Load(envFile string) (*AppConfig, error) {
	if err := LoadEnv(envFile); err != nil {
		return nil, err
	}
	return NewSystemConfig(), nil
}
