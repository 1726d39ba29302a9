package config

import "os"

type AdminConfig struct {
	// Addr is the listen address of the admin HTTP server; empty disables it
	Addr         string
	Username     string
	PasswordHash string
}

func (c *AdminConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

func NewAdminConfig() *AdminConfig {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	return &AdminConfig{
		Addr:         os.Getenv("ADMIN_ADDR"),
		Username:     username,
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
}
