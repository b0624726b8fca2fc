package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/jonathan/legislative-tracker/internal/config"
)

// TestMain loads .env like the binary does, then drops the service URL
// override so flag resolution tests see the built-in defaults.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	_ = os.Unsetenv(config.EnvBaseURL)

	os.Exit(m.Run())
}
