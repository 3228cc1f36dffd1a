package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kshitijlau/AIPM/internal/config"
	"github.com/kshitijlau/AIPM/internal/domain"
	"github.com/kshitijlau/AIPM/internal/logger"
	"github.com/kshitijlau/AIPM/internal/services"
)

// multipart framing around the file part
const formOverhead = 1 << 20

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    logger.Logger
	halted *domain.ConfigurationError
}

// NewServer resolves credentials and builds the router. A configuration error
// does not fail startup: the server comes up halted, showing the error on
// every page and exposing no analysis routes.
func NewServer(cfg config.Config, log logger.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("init templates: %w", err)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(MaxBodySize(max(cfg.MaxUploadBytes, cfg.MaxAudioBytes) + formOverhead))
	engine.Use(CORS())

	srv := &Server{engine: engine, cfg: cfg, log: log}

	svc, err := services.NewFromConfig(cfg, log)
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		log.Error(context.Background(), "configuration error, serving halted page: %v", cfgErr)
		srv.halted = cfgErr
		registerHaltedRoutes(engine, cfgErr)
	case err != nil:
		return nil, err
	default:
		api := NewAPI(cfg, svc, services.NewExporter(), log)
		registerRoutes(engine, api)
	}

	return srv, nil
}

// Halted reports the configuration error the server was started with, if any.
func (s *Server) Halted() error {
	if s.halted == nil {
		return nil
	}
	return s.halted
}

func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	s.log.Info(context.Background(), "listening on %s", addr)
	return s.engine.Run(addr)
}
