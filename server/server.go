// Package server поднимает HTTP API пакетного импорта поверх gin.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"importserver/database"
	"importserver/importer"
	"importserver/internal/config"
	"importserver/server/middleware"
)

// Server HTTP сервер импорта.
type Server struct {
	cfg      *config.Config
	db       *database.StoreDB
	importer *importer.Importer
	logger   *slog.Logger
}

// NewServer creates the server over an already opened store.
func NewServer(cfg *config.Config, db *database.StoreDB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		db:       db,
		importer: importer.New(db, cfg.Matcher, logger),
		logger:   logger,
	}
}

// Router собирает маршруты и общие middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = s.cfg.MaxUploadBytes

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.Security(),
		middleware.CORS(),
		middleware.Gzip(),
	)

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)

	imports := api.Group("/import")
	imports.Use(middleware.RateLimit(s.cfg.RateLimitRPS))
	imports.POST("/preview", s.handlePreview)
	imports.POST("/:domain", s.handleImport)

	return router
}

// Run запускает сервер на настроенном порту.
func (s *Server) Run() error {
	s.logger.Info("запуск сервера импорта", "port", s.cfg.Port)
	return s.Router().Run(":" + s.cfg.Port)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
