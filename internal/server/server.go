// Package server exposes the analysis pipeline over HTTP: a document
// upload endpoint, a question-answering endpoint and a health check.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aryan-2511/lexiclarus/internal/model"
	"github.com/aryan-2511/lexiclarus/internal/pipeline"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

// Server holds the HTTP engine and its collaborators.
type Server struct {
	cfg      *model.Config
	analyzer *pipeline.Analyzer
	engine   *gin.Engine
	log      logger.Logger
}

// New creates a configured server with routes registered.
func New(cfg *model.Config, analyzer *pipeline.Analyzer, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		engine:   engine,
		log:      log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.health)
	s.engine.POST("/analyze-document", s.analyzeDocument)
	s.engine.POST("/ask-question", s.askQuestion)
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	s.log.Info("listening", "addr", s.cfg.Server.Addr)
	return s.engine.Run(s.cfg.Server.Addr)
}

// requestLogger logs one line per request with latency and status.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
