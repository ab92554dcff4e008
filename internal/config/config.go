package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"importserver/normalization"
)

// Config конфигурация сервера импорта
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База данных
	DatabasePath string `json:"database_path"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Ограничения загрузки
	MaxUploadBytes int64 `json:"max_upload_bytes"`
	RateLimitRPS   int   `json:"rate_limit_rps"`

	// Пороги нечеткого сопоставления. Эмпирика, не закон — подбираются
	// под конкретный набор данных.
	Matcher normalization.MatcherConfig `json:"matcher"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	defaults := normalization.DefaultMatcherConfig()

	config := &Config{
		Port:         getEnv("SERVER_PORT", "8090"),
		DatabasePath: getEnv("DATABASE_PATH", "import.db"),

		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 3),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 10),

		Matcher: normalization.MatcherConfig{
			EditDivisor:       getEnvInt("MATCH_EDIT_DIVISOR", defaults.EditDivisor),
			ShortNameLen:      getEnvInt("MATCH_SHORT_NAME_LEN", defaults.ShortNameLen),
			ContainmentMinLen: getEnvInt("MATCH_CONTAINMENT_MIN_LEN", defaults.ContainmentMinLen),
			TokenOverlapMin:   getEnvInt("MATCH_TOKEN_OVERLAP_MIN", defaults.TokenOverlapMin),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
