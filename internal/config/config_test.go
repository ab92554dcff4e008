package config

import (
	"testing"
	"time"

	"importserver/normalization"
)

func validConfig() *Config {
	return &Config{
		Port:            "8090",
		DatabasePath:    "import.db",
		MaxOpenConns:    10,
		MaxIdleConns:    3,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        "INFO",
		MaxUploadBytes:  20 << 20,
		RateLimitRPS:    10,
		Matcher:         normalization.DefaultMatcherConfig(),
	}
}

func TestConfigLogLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		wantError bool
	}{
		{"Valid DEBUG", "DEBUG", false},
		{"Valid INFO", "INFO", false},
		{"Valid WARN", "WARN", false},
		{"Valid ERROR", "ERROR", false},
		{"Valid lowercase debug", "debug", false},
		{"Invalid value", "INVALID", true},
		{"Empty string", "", false}, // Пустая строка допустима (будет использовано значение по умолчанию)
		{"Mixed case", "DeBuG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.logLevel

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfigPortValidation(t *testing.T) {
	tests := []struct {
		port      string
		wantError bool
	}{
		{"8090", false},
		{"1", false},
		{"65535", false},
		{"0", true},
		{"65536", true},
		{"abc", true},
		{"", true},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.Port = tt.port
		if err := cfg.Validate(); (err != nil) != tt.wantError {
			t.Errorf("Validate() with port %q error = %v, wantError %v", tt.port, err, tt.wantError)
		}
	}
}

func TestConfigPoolValidation(t *testing.T) {
	cfg := validConfig()
	cfg.MaxIdleConns = cfg.MaxOpenConns + 1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() must reject idle conns above open conns")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port == "" || cfg.DatabasePath == "" {
		t.Error("defaults must be populated")
	}
	if cfg.Matcher.EditDivisor != normalization.DefaultMatcherConfig().EditDivisor {
		t.Errorf("Matcher.EditDivisor = %d, want the tuned default", cfg.Matcher.EditDivisor)
	}
}

func TestLoadConfigMatcherOverride(t *testing.T) {
	t.Setenv("MATCH_EDIT_DIVISOR", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Matcher.EditDivisor != 5 {
		t.Errorf("Matcher.EditDivisor = %d, want the env override 5", cfg.Matcher.EditDivisor)
	}
}
