package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Fuabioo/hhdt/internal/config"
	"github.com/Fuabioo/hhdt/internal/logging"
	"github.com/Fuabioo/hhdt/internal/metrics"
)

const (
	serverName    = "hhdt"
	serverVersion = "0.1.0"

	tracerName = "github.com/Fuabioo/hhdt/internal/mcp"
)

// Server wraps the MCP server with hhdt-specific state.
type Server struct {
	mcp     *server.MCPServer
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  logging.Logger
	tracer  trace.Tracer
}

// Option configures NewServer.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics sink. The default is a fresh registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates and configures the MCP server with all envelope tools
// registered. A nil cfg means defaults.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		cfg:    cfg,
		logger: logging.Nop{},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewMetrics()
	}

	s.mcp = server.NewMCPServer(serverName, serverVersion)

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// registerTools registers the envelope tools.
func (s *Server) registerTools() error {
	s.mcp.AddTool(mcp.NewTool(toolEncode,
		mcp.WithDescription("Wraps a JSON value in a success package"),
		mcp.WithString("payload",
			mcp.Required(),
			mcp.Description("JSON text of the value to wrap")),
		mcp.WithString("response_id",
			mcp.Description("Correlation id echoed by the receiver")),
		mcp.WithBoolean("new_response_id",
			mcp.Description("Generate a random correlation id (default: false)")),
	), s.instrument(toolEncode, s.handleEncode))

	s.mcp.AddTool(mcp.NewTool(toolEncodeError,
		mcp.WithDescription("Builds an error package from an error name and message"),
		mcp.WithString("source",
			mcp.Description("Error family: HoloError, UserError or AppError (default from config)")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Error kind name, e.g. InstanceNotRunningError")),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Human-readable error message")),
		mcp.WithString("stack",
			mcp.Description("Stack trace, one frame per line")),
		mcp.WithString("response_id",
			mcp.Description("Correlation id echoed by the receiver")),
	), s.instrument(toolEncodeError, s.handleEncodeError))

	s.mcp.AddTool(mcp.NewTool(toolDecode,
		mcp.WithDescription("Parses a package and returns its value or reconstructed error"),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Serialized package")),
	), s.instrument(toolDecode, s.handleDecode))

	s.mcp.AddTool(mcp.NewTool(toolValidate,
		mcp.WithDescription("Checks whether a message is a well-formed package"),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Serialized package")),
	), s.instrument(toolValidate, s.handleValidate))

	s.mcp.AddTool(mcp.NewTool(toolSources,
		mcp.WithDescription("Lists the known error families"),
	), s.instrument(toolSources, s.handleSources))

	return nil
}

// Serve starts the MCP server on stdio. When a metrics address is
// configured the prometheus endpoint is served alongside it.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if addr := s.cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			s.logger.Info("serving metrics", logging.String("addr", addr))
			if err := httpSrv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		s.logger.Info("serving MCP on stdio", logging.String("version", serverVersion))
		stdio := server.NewStdioServer(s.mcp)
		if err := stdio.Listen(ctx, in, out); err != nil && !stderrors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to serve MCP: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Serve creates a server from cfg and serves it on stdio until ctx ends.
func Serve(ctx context.Context, cfg *config.Config, opts ...Option) error {
	srv, err := NewServer(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
