package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{"SECRET_KEY": testSecret})
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite://data/learninfive.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 30m", cfg.AccessTokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.Timeout != 30*time.Second {
		t.Errorf("Gemini.Timeout = %v, want 30s", cfg.Gemini.Timeout)
	}
	if cfg.GeneratorEnabled() {
		t.Error("GeneratorEnabled() = true without an API key")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"SECRET_KEY":       testSecret,
		"PORT":             "9090",
		"DATABASE_URL":     "postgres://u:p@localhost/learn",
		"ACCESS_TOKEN_TTL": "1h",
		"LOG_FORMAT":       "json",
		"GEMINI_API_KEY":   "key",
		"CORS_ORIGINS":     "http://localhost:3000,https://learn.example.com",
	})
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %v, want 1h", cfg.AccessTokenTTL)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if !cfg.GeneratorEnabled() {
		t.Error("GeneratorEnabled() = false with an API key")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want two origins", cfg.CORSOrigins)
	}
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			vars:    map[string]string{},
			wantErr: "SECRET_KEY",
		},
		{
			name:    "short secret",
			vars:    map[string]string{"SECRET_KEY": "short"},
			wantErr: "at least 16",
		},
		{
			name:    "port out of range",
			vars:    map[string]string{"SECRET_KEY": testSecret, "PORT": "70000"},
			wantErr: "PORT",
		},
		{
			name:    "unparseable duration",
			vars:    map[string]string{"SECRET_KEY": testSecret, "ACCESS_TOKEN_TTL": "soon"},
			wantErr: "soon",
		},
		{
			name:    "negative ttl",
			vars:    map[string]string{"SECRET_KEY": testSecret, "ACCESS_TOKEN_TTL": "-5m"},
			wantErr: "ACCESS_TOKEN_TTL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.vars)
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
