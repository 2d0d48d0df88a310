package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/config"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const REQUEST_TIMEOUT = 5 * time.Second

type Server struct {
	port        uint
	httpLog     bool
	rootContext *actor.RootContext
	masterActor *actor.PID
	gatherer    prometheus.Gatherer
	hub         *hub
	logger      *zap.Logger
}

// New builds the HTTP layer on top of the master actor. A nil gatherer
// disables /metrics.
func New(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID,
	eventStream *eventstream.EventStream, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	logger = logger.With(zap.String("component", "http"))
	return &Server{
		port:        cfg.Port,
		rootContext: rootContext,
		masterActor: masterActor,
		httpLog:     cfg.HttpLog,
		gatherer:    gatherer,
		hub:         newHub(eventStream, logger),
		logger:      logger,
	}
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID,
	eventStream *eventstream.EventStream, gatherer prometheus.Gatherer, logger *zap.Logger) *http.Server {
	s := New(cfg, rootContext, masterActor, eventStream, gatherer, logger)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	server.RegisterOnShutdown(s.Close)

	return server
}

// Close disconnects the websocket clients and stops listening to fleet
// events.
func (s *Server) Close() {
	s.hub.close()
}
