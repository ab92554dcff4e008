package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"importserver/database"
	"importserver/internal/config"
	"importserver/server"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("Запуск сервера импорта...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Ошибка загрузки конфигурации: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	db, err := database.NewStoreDBWithConfig(cfg.DatabasePath, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("✗ Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()

	log.Printf("✓ База данных: %s", cfg.DatabasePath)
	log.Printf("✓ API доступно: http://localhost:%s/api", cfg.Port)
	log.Println("═══════════════════════════════════════════════════════")

	srv := server.NewServer(cfg, db, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("✗ Ошибка запуска сервера: %v", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
