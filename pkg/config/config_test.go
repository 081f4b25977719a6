package config

import (
	"strings"
	"testing"
)

func productionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		LogLevel:             "info",
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 32),
		AntiforgeryHashKey:   strings.Repeat("c", 32),
		AntiforgerySecret:    strings.Repeat("d", 32),
	}
}

func TestValidateForProduction_NonProductionNoop(t *testing.T) {
	cfg := &Config{Environment: EnvDevelopment, LogLevel: "debug"}
	if err := ValidateForProduction(cfg); err != nil {
		t.Fatalf("expected nil for development, got %v", err)
	}
}

func TestValidateForProduction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short session auth key", func(c *Config) { c.SessionAuthKey = "short" }, "SESSION_AUTH_KEY"},
		{"short session encryption key", func(c *Config) { c.SessionEncryptionKey = "short" }, "SESSION_ENCRYPTION_KEY"},
		{"default antiforgery hash key", func(c *Config) { c.AntiforgeryHashKey = devAntiforgeryHashKey }, "ANTIFORGERY_HASH_KEY"},
		{"default antiforgery secret", func(c *Config) { c.AntiforgerySecret = devAntiforgerySecret }, "ANTIFORGERY_SECRET"},
		{"bad block key length", func(c *Config) { c.AntiforgeryBlockKey = "12345" }, "ANTIFORGERY_BLOCK_KEY"},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExposeTestingEndpoints(t *testing.T) {
	for env, want := range map[string]bool{
		EnvDevelopment: true,
		EnvTesting:     true,
		EnvProduction:  false,
	} {
		cfg := &Config{Environment: env}
		if got := cfg.ExposeTestingEndpoints(); got != want {
			t.Errorf("%s: got %v, want %v", env, got, want)
		}
	}
}
