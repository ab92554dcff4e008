package config

import (
	"fmt"
	"strconv"
	"strings"
)

// validLogLevels допустимые уровни логирования
var validLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	// Валидация пути к базе данных
	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		errors = append(errors, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errors = append(errors, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errors = append(errors, "max idle connections cannot be greater than max open connections")
	}

	// Валидация уровня логирования (пустой означает значение по умолчанию)
	if c.LogLevel != "" && !validLogLevels[strings.ToUpper(c.LogLevel)] {
		errors = append(errors, fmt.Sprintf("invalid log level: %s", c.LogLevel))
	}

	// Валидация лимитов загрузки
	if c.MaxUploadBytes < 1 {
		errors = append(errors, "max upload bytes must be at least 1")
	}
	if c.RateLimitRPS < 1 {
		errors = append(errors, "rate limit must be at least 1 request per second")
	}

	// Валидация порогов сопоставления
	if c.Matcher.EditDivisor < 1 {
		errors = append(errors, "matcher edit divisor must be at least 1")
	}
	if c.Matcher.TokenOverlapMin < 1 {
		errors = append(errors, "matcher token overlap minimum must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
