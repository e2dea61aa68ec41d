package config

import (
	"os"
	"strconv"
)

// Get returns the environment value for key, or fallback when unset or
// empty. Callers load .env beforehand (godotenv in the binaries).
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt is Get for integer knobs; unparseable values fall back.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
