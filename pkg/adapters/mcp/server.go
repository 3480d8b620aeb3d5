package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/authflow"
	"github.com/aretw0/authflow/internal/presentation/tui"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine defines the subset of authflow.Engine exposed as MCP tools.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Definition(ctx context.Context, name string) (*domain.Definition, error)
	Simulate(ctx context.Context, req authflow.RunRequest) (*domain.Run, error)
}

// DescribeArgs are the arguments of describe_automaton.
type DescribeArgs struct {
	Name string `json:"name"`
}

// DescribeResponse is the structured result of describe_automaton.
type DescribeResponse struct {
	Definition *domain.Definition `json:"definition" jsonschema_description:"The automaton definition"`
	Markdown   string             `json:"markdown" jsonschema_description:"Human readable transition table"`
}

// SimulateArgs are the arguments of simulate.
type SimulateArgs struct {
	Automaton string   `json:"automaton"`
	Scenario  string   `json:"scenario,omitempty"`
	Input     string   `json:"input,omitempty"`
	Sequence  []string `json:"sequence,omitempty"`
	Initial   []string `json:"initial,omitempty"`
}

// SimulateResponse is the structured result of simulate.
type SimulateResponse struct {
	Run     *domain.Run `json:"run" jsonschema_description:"The finished run, including every visited configuration"`
	Outcome string      `json:"outcome" jsonschema_description:"accepted, rejected, dead or cancelled"`
}

// Server wraps the authflow Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("authflow-mcp", authflow.Version),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_automata",
		mcp.WithDescription("List the names of every available authentication automaton."),
	), s.handleList)

	describeTool := mcp.NewTool("describe_automaton",
		mcp.WithDescription("Describe an automaton: mode, states, accepting states, transition table and scenarios."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Automaton name, e.g. auth-dfa")),
		mcp.WithOutputSchema[DescribeResponse](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))

	simulateTool := mcp.NewTool("simulate",
		mcp.WithDescription("Replay an input sequence against an automaton and return every configuration it visits. "+
			"Provide a scenario name, a sequence, or a comma separated input. With none, the run starts and ends at the initial configuration."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Automaton name")),
		mcp.WithString("scenario", mcp.Description("Name of a predefined input sequence, e.g. login")),
		mcp.WithString("input", mcp.Description("Comma or space separated symbols")),
		mcp.WithArray("sequence", mcp.Description("Input symbols in order"), mcp.WithStringItems()),
		mcp.WithArray("initial", mcp.Description("Override the initial configuration"), mcp.WithStringItems()),
		mcp.WithOutputSchema[SimulateResponse](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args DescribeArgs) (DescribeResponse, error) {
	def, err := s.engine.Definition(ctx, args.Name)
	if err != nil {
		return DescribeResponse{}, fmt.Errorf("describe failed: %w", err)
	}
	return DescribeResponse{
		Definition: def,
		Markdown:   tui.DescribeMarkdown(def),
	}, nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args SimulateArgs) (SimulateResponse, error) {
	req := authflow.RunRequest{
		Automaton: args.Automaton,
		Scenario:  args.Scenario,
	}
	for _, sym := range args.Sequence {
		req.Sequence = append(req.Sequence, domain.Symbol(sym))
	}
	for _, st := range args.Initial {
		req.Initial = append(req.Initial, domain.StateID(st))
	}
	if len(req.Sequence) == 0 && args.Input != "" {
		seq, err := runner.ParseInput(args.Input)
		if err != nil {
			s.logger.Warn("MCP Simulate: Input rejected", "err", err, "size", len(args.Input))
			return SimulateResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		req.Sequence = seq
	} else if err := runner.CheckSequence(req.Sequence); err != nil {
		return SimulateResponse{}, fmt.Errorf("sequence rejected: %w", err)
	}

	run, err := s.engine.Simulate(ctx, req)
	if err != nil {
		return SimulateResponse{}, fmt.Errorf("simulate failed: %w", err)
	}
	return SimulateResponse{Run: run, Outcome: runner.Outcome(run)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("authflow://automata", "Available Automata",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list automata: %w", err)
		}
		defs := make([]*domain.Definition, 0, len(names))
		for _, name := range names {
			def, err := s.engine.Definition(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to load automaton %s: %w", name, err)
			}
			defs = append(defs, def)
		}
		jsonBytes, _ := json.Marshal(defs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "authflow://automata",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
