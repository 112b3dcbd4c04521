package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// shutdownTimeout bounds how long in-flight HTTP requests may run after cancellation.
const shutdownTimeout = 5 * time.Second

// Server exposes course retrieval, answering, moderation and quizzes over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a server for the configured ports.
// Only retrieval is required; other tools appear when their port is set.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "learnly",
		Version: Version,
	}
	s := &Server{
		ports: ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: instructions(ports),
		}),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Tools returns the names of the tools the server offers, in registration order.
func (s *Server) Tools() []string {
	return enabledTools(s.ports)
}

func enabledTools(p *Ports) []string {
	tools := []string{"retrieve"}
	if p.Answer != nil {
		tools = append(tools, "ask")
	}
	if p.Moderation != nil {
		tools = append(tools, "moderate")
	}
	if p.Quiz != nil {
		tools = append(tools, "generate_quiz")
	}
	return tools
}

// instructions tells the client how the course tools fit together.
func instructions(p *Ports) string {
	var b strings.Builder
	b.WriteString("Course material is addressed by numeric course_id. ")
	b.WriteString("Available tools: " + strings.Join(enabledTools(p), ", ") + ". ")
	if p.Answer != nil {
		b.WriteString("Prefer ask for questions; it answers only from indexed material and reports its sources. ")
	}
	if p.Quiz != nil {
		b.WriteString("generate_quiz fails when the course has no indexed material. ")
	}
	if p.Ingest != nil {
		b.WriteString("Read " + uriScheme + "courses/{courseId}/indices to see which documents are indexed.")
	}
	return strings.TrimSpace(b.String())
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
			httpServer.Close()
		}
	}()

	logger.Info("MCP server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
