package config

import "os"

type PostgresConfig struct {
	Url    string
	Schema string
}

// Enabled reports whether a database URL was configured
func (c *PostgresConfig) Enabled() bool {
	return c != nil && c.Url != ""
}

func NewPostgresConfig() *PostgresConfig {
	schema := os.Getenv("DATABASE_SCHEMA")
	if schema == "" {
		schema = "public"
	}
	return &PostgresConfig{
		Url:    os.Getenv("DATABASE_URL"),
		Schema: schema,
	}
}
