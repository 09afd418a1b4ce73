package envutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	values := map[string]string{
		"API_BASE_URL":   "http://localhost:8000/api",
		"SESSION_SECRET": "a secret with spaces",
	}
	if err := WriteDotEnv(path, values, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteDotEnv(path, values, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}

	got, err := ReadDotEnv(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got["SESSION_SECRET"] != "a secret with spaces" {
		t.Fatalf("unexpected secret %q", got["SESSION_SECRET"])
	}

	t.Setenv("API_BASE_URL", "http://override/api")
	t.Setenv("SESSION_SECRET", "")
	os.Unsetenv("SESSION_SECRET")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if os.Getenv("API_BASE_URL") != "http://override/api" {
		t.Fatalf("existing env var was overridden")
	}
	if os.Getenv("SESSION_SECRET") != "a secret with spaces" {
		t.Fatalf("dotenv value not loaded")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
}
