package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acoustlab/strudelize/logging"
	"github.com/acoustlab/strudelize/strudel"
	"github.com/acoustlab/strudelize/transcode"
)

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port           int           `json:"port"`
	MaxUploadBytes int64         `json:"max_upload_bytes"`
	ReadTimeout    time.Duration `json:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout"`
}

// DefaultServerConfig returns default server settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		MaxUploadBytes: 100 << 20, // 100 MiB
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   10 * time.Minute,
	}
}

// Server exposes the conversion pipeline over HTTP
type Server struct {
	config     *ServerConfig
	pipeline   *strudel.Pipeline
	downloader *transcode.Downloader
	logger     logging.Logger
	engine     *gin.Engine
}

// NewServer wires the HTTP surface around a pipeline. The downloader may be
// nil, which disables the URL conversion endpoint.
func NewServer(config *ServerConfig, pipeline *strudel.Pipeline, downloader *transcode.Downloader, logger logging.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = config.MaxUploadBytes

	s := &Server{
		config:     config,
		pipeline:   pipeline,
		downloader: downloader,
		logger:     logger,
		engine:     engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/convert", s.handleConvert)
	v1.POST("/convert/url", s.handleConvertURL)
}

// Engine exposes the underlying router, mainly for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks serving HTTP on the configured port
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info("http server listening", logging.Fields{"addr": addr})

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}
