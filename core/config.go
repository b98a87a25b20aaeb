package core

import (
	"fmt"
	"strings"
	"time"
)

type SessionConfig struct {
	TTL time.Duration `koanf:"ttl" mapstructure:"ttl"`
}

type LinkConfig struct {
	CodeTTL time.Duration `koanf:"code_ttl" mapstructure:"code_ttl"`
}

type GuardConfig struct {
	PublicPaths []string `koanf:"public_paths" mapstructure:"public_paths"`
	EntryPaths  []string `koanf:"entry_paths" mapstructure:"entry_paths"`
	LoginPath   string   `koanf:"login_path" mapstructure:"login_path"`
	HomePath    string   `koanf:"home_path" mapstructure:"home_path"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Session     SessionConfig `koanf:"session" mapstructure:"session"`
	Link        LinkConfig    `koanf:"link" mapstructure:"link"`
	Guard       GuardConfig   `koanf:"guard" mapstructure:"guard"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "tez-social",
		Session: SessionConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Link: LinkConfig{
			CodeTTL: 10 * time.Minute,
		},
		Guard: GuardConfig{
			PublicPaths: []string{"/", "/about"},
			EntryPaths:  []string{"/login", "/register"},
			LoginPath:   "/login",
			HomePath:    "/dashboard",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("core: session.ttl must not be negative")
	}
	if c.Link.CodeTTL < 0 {
		return fmt.Errorf("core: link.code_ttl must not be negative")
	}
	if strings.TrimSpace(c.Guard.LoginPath) == "" {
		return fmt.Errorf("core: guard.login_path is required")
	}
	if strings.TrimSpace(c.Guard.HomePath) == "" {
		return fmt.Errorf("core: guard.home_path is required")
	}
	return nil
}
