// Package api serves persisted reconciliation runs over HTTP.
//
// The server is read-only: it exposes run summaries and the latest-run
// pointer for dashboards, and never triggers a reconciliation itself.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/reconflow/reconflow/internal/api/middleware"
	"github.com/reconflow/reconflow/internal/infrastructure/config"
	"github.com/reconflow/reconflow/internal/infrastructure/storage"
)

// Server is the HTTP report server.
type Server struct {
	cfg    config.APIConfig
	runDir string
	// defaultPipeline answers requests that omit ?pipeline=.
	defaultPipeline string
	logger          *slog.Logger
	router          *gin.Engine
}

// RunListResponse is the payload for GET /api/runs.
type RunListResponse struct {
	Pipeline string   `json:"pipeline"`
	Runs     []string `json:"runs"`
	Count    int      `json:"count"`
}

// NewServer creates the report server over a runs directory.
func NewServer(cfg config.APIConfig, runDir, defaultPipeline string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = config.Default().API.AllowedOrigins
	}

	s := &Server{
		cfg:             cfg,
		runDir:          runDir,
		defaultPipeline: defaultPipeline,
		logger:          logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type"},
	}))

	router.GET("/health", s.health)
	router.GET("/api/runs", s.listRuns)
	router.GET("/api/runs/latest", s.latestRun)
	router.GET("/api/runs/:id", s.getRun)

	s.router = router
	return s
}

// Run starts the server and blocks.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("report server listening", slog.String("addr", addr))
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) pipeline(c *gin.Context) string {
	return c.DefaultQuery("pipeline", s.defaultPipeline)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRuns(c *gin.Context) {
	pipeline := s.pipeline(c)

	ids, err := storage.ListRunIDs(s.runDir, pipeline)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no runs for pipeline %s", pipeline)})
		return
	}

	c.JSON(http.StatusOK, RunListResponse{
		Pipeline: pipeline,
		Runs:     ids,
		Count:    len(ids),
	})
}

func (s *Server) latestRun(c *gin.Context) {
	pipeline := s.pipeline(c)

	id, err := storage.LatestRunID(s.runDir, pipeline)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no runs for pipeline %s", pipeline)})
		return
	}

	s.writeSummary(c, pipeline, id)
}

func (s *Server) getRun(c *gin.Context) {
	s.writeSummary(c, s.pipeline(c), c.Param("id"))
}

func (s *Server) writeSummary(c *gin.Context, pipeline, runID string) {
	summary, err := storage.ReadSummary(s.runDir, pipeline, runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run not found: %s", runID)})
		return
	}

	c.JSON(http.StatusOK, summary)
}
