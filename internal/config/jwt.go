package config

import (
	"fmt"
	"os"
)

// JWTConfig holds the settings for verifying bearer tokens issued by the
// external authentication service.
type JWTConfig struct {
	Secret string
	Issuer string // optional; when set, tokens must carry a matching iss claim
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_ISSUER (optional).
func NewJWTConfig() (*JWTConfig, error) {
	config := &JWTConfig{
		Secret: os.Getenv("JWT_SECRET"),
		Issuer: os.Getenv("JWT_ISSUER"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.Secret))
	}
	return nil
}
