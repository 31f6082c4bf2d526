package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the single-admin credentials and session token settings.
type AuthConfig struct {
	JWTSecret       string
	ExpirationHours int

	AdminUsername     string
	AdminPasswordHash string // bcrypt hash, see the hash-password command

	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewAuthConfig creates the auth configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24),
// ADMIN_USERNAME (default: admin), ADMIN_PASSWORD_HASH (required),
// BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER.
func NewAuthConfig() (*AuthConfig, error) {
	cfg := &AuthConfig{
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Pepper:            os.Getenv("PASSWORD_PEPPER"),
	}

	var err error
	cfg.ExpirationHours, err = strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}
	cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required but not set")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewPasswordHasher returns an AuthConfig usable only for hashing, reading
// BCRYPT_COST and PASSWORD_PEPPER. Used by the hash-password command.
func NewPasswordHasher() (*AuthConfig, error) {
	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}
	cfg := &AuthConfig{BcryptCost: cost, Pepper: os.Getenv("PASSWORD_PEPPER"), ExpirationHours: 1}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates numeric ranges.
func (c *AuthConfig) normalize() error {
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c *AuthConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c *AuthConfig) VerifyPassword(pw, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper))
	return err == nil
}

// CheckAdmin reports whether username and password match the configured admin
func (c *AuthConfig) CheckAdmin(username, password string) bool {
	// Always run bcrypt so a wrong username costs the same as a wrong password
	ok := c.VerifyPassword(password, c.AdminPasswordHash)
	return ok && username == c.AdminUsername
}
