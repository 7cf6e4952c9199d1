// Package api serves the backup over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheus3301/wxbak/internal/conversation"
	"github.com/matheus3301/wxbak/internal/status"
)

// Index is the read side of the conversation indexer used by the handlers.
type Index interface {
	List(ctx context.Context, root, accountHash string, minCount int) ([]conversation.Summary, error)
	Conversation(ctx context.Context, root, accountHash, table string) (*conversation.Summary, error)
	Messages(ctx context.Context, q conversation.Query) (*conversation.Page, error)
	Dates(ctx context.Context, root, accountHash, table string) ([]string, error)
	Stats(ctx context.Context, root, accountHash, table string) (*conversation.Stats, error)
	Location() *time.Location
}

// Options holds the request defaults taken from configuration.
type Options struct {
	Root            string
	ListenAddr      string
	MinMessageCount int
	ExportLimit     int
}

// Server represents the HTTP API.
type Server struct {
	index   Index
	opts    Options
	machine *status.Machine
	logger  *zap.Logger
	router  *gin.Engine
	server  *http.Server

	startedAt time.Time
}

// Response represents the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewServer creates the API server with routes registered. machine may be
// nil, in which case /healthz reports SERVING.
func NewServer(index Index, opts Options, machine *status.Machine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	s := &Server{
		index:     index,
		opts:      opts,
		machine:   machine,
		logger:    logger,
		router:    router,
		startedAt: time.Now(),
		server: &http.Server{
			Addr:              opts.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	router.Use(requestID(), accessLog(logger), gin.Recovery())
	s.registerRoutes(router)
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the listen address. Serve must be called next.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.server.Addr)
}

// Serve handles requests on ln until Stop. Blocks.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server starting", zap.String("addr", ln.Addr().String()))
	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/users", s.handleListUsers)
		api.GET("/users/:md5", s.handleGetUser)
		api.GET("/chats", s.handleListChats)
		api.GET("/chats/messages", s.handleGetMessages)
		api.GET("/chats/dates", s.handleGetDates)
		api.GET("/chats/stats", s.handleGetStats)
		api.GET("/chats/view", s.handleView)
		api.POST("/chats/download", s.handleDownload)
	}
}
