package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/civicflow"
	"github.com/aretw0/civicflow/pkg/agent"
	"github.com/aretw0/civicflow/pkg/domain"
)

// FlowResourceURI exposes the flow descriptions as a resource.
const FlowResourceURI = "civicflow://flow"

// Service is the part of the agent exposed to MCP clients.
type Service interface {
	Ask(ctx context.Context, req agent.Request) (*agent.Result, error)
	Query(ctx context.Context, input string) (*agent.Result, error)
	Flows() []domain.FlowDescription
}

var _ Service = (*agent.Agent)(nil)

// Server exposes the agent as an MCP server.
type Server struct {
	service   Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server for the service.
func NewServer(service Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:   service,
		logger:    logger,
		mcpServer: server.NewMCPServer("civicflow", civicflow.Version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop MCP server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a natural-language question about civic incident data (crime, 311 requests). "+
			"Returns the answer, the SQL used and the rows it produced."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question, in plain language")),
		mcp.WithString("table", mcp.Description("Table to inspect for the schema (optional)")),
		mcp.WithBoolean("no_map", mcp.Description("Skip writing a map artifact")),
	), s.handleAsk)

	s.mcpServer.AddTool(mcp.NewTool("run_sql",
		mcp.WithDescription("Run a read-only SQL query, or translate a question to SQL and run it. "+
			"Query errors are reported in the result instead of failing the call."),
		mcp.WithString("query", mcp.Required(), mcp.Description("SQL (SELECT/WITH) or a question")),
	), s.handleRunSQL)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.service.Ask(ctx, agent.Request{
		Question: question,
		Table:    request.GetString("table", ""),
		NoMap:    request.GetBool("no_map", false),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "MCP ask_question failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}
	return mcp.NewToolResultStructured(res, res.Answer), nil
}

func (s *Server) handleRunSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.service.Query(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "MCP run_sql failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return mcp.NewToolResultStructured(res, res.Formatted), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FlowResourceURI, "Registered flows",
		mcp.WithResourceDescription("Steps and transitions of the qa and agent flows"),
		mcp.WithMIMEType("application/json"),
	), s.readFlows)
}

func (s *Server) readFlows(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.service.Flows())
	if err != nil {
		return nil, fmt.Errorf("failed to encode flows: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FlowResourceURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
