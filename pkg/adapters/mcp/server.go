// Package mcp exposes a cinegraph engine as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine defines what the MCP server needs from cinegraph.Engine.
type Engine interface {
	Invoke(ctx context.Context, cfg domain.SessionConfig, input string) (*cinegraph.Result, error)
	Resume(ctx context.Context, cfg domain.SessionConfig, decision domain.Decision) (*cinegraph.Result, error)
	State(ctx context.Context, cfg domain.SessionConfig) (*domain.Checkpoint, error)
	Tools() []domain.Tool
}

// ThreadArgs selects a session. Namespace and checkpoint id are optional.
type ThreadArgs struct {
	ThreadID     string `json:"thread_id"`
	Namespace    string `json:"checkpoint_ns,omitempty"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
}

// Session returns the session config with defaults applied.
func (a ThreadArgs) Session() domain.SessionConfig {
	return domain.SessionConfig{
		ThreadID:     a.ThreadID,
		Namespace:    a.Namespace,
		CheckpointID: a.CheckpointID,
	}.WithDefaults()
}

// SendMessageArgs are the arguments of send_message.
type SendMessageArgs struct {
	ThreadArgs
	Input string `json:"input"`
}

// ResumeArgs are the arguments of resume_review.
type ResumeArgs struct {
	ThreadArgs
	Accept      bool   `json:"accept"`
	Instruction string `json:"instruction,omitempty"`
}

// TurnResponse is the structured output of send_message and resume_review.
type TurnResponse struct {
	Appended  domain.Log              `json:"appended" jsonschema_description:"Messages appended by the turn"`
	Invoked   []domain.CapabilityCall `json:"invoked" jsonschema_description:"Capabilities dispatched during the turn"`
	Reason    domain.Reason           `json:"reason,omitempty" jsonschema_description:"Why the turn ended"`
	Suspended *domain.Pending         `json:"suspended,omitempty" jsonschema_description:"Decision awaited before the turn can continue"`
}

func toResponse(res *cinegraph.Result) TurnResponse {
	return TurnResponse{
		Appended:  res.Appended,
		Invoked:   res.Invoked,
		Reason:    res.Reason,
		Suspended: res.Suspended,
	}
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("cinegraph-mcp", cinegraph.Version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func threadOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Conversation thread id")),
		mcp.WithString("checkpoint_ns", mcp.Description("Checkpoint namespace (default article_checkpoints)")),
		mcp.WithString("checkpoint_id", mcp.Description("Checkpoint id (default article_1)")),
	}
}

func (s *Server) registerTools() {
	sendOpts := append(threadOptions(),
		mcp.WithDescription("Send a human message to the film blog assistant and run the turn."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The human message")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(mcp.NewTool("send_message", sendOpts...), mcp.NewStructuredToolHandler(s.handleSendMessage))

	resumeOpts := append(threadOptions(),
		mcp.WithDescription("Answer the pending review of a suspended thread: keep the result or give a new instruction."),
		mcp.WithBoolean("accept", mcp.Description("Keep the generated content as is")),
		mcp.WithString("instruction", mcp.Description("New prompt, or the title or number of a suggestion")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(mcp.NewTool("resume_review", resumeOpts...), mcp.NewStructuredToolHandler(s.handleResume))

	getOpts := append(threadOptions(),
		mcp.WithDescription("Get the latest checkpoint of a thread."),
	)
	s.mcpServer.AddTool(mcp.NewTool("get_thread", getOpts...), mcp.NewStructuredToolHandler(s.handleGetThread))
}

func (s *Server) handleSendMessage(ctx context.Context, _ mcp.CallToolRequest, args SendMessageArgs) (TurnResponse, error) {
	input, err := runner.SanitizeInput(args.Input)
	if err != nil {
		s.logger.Warn("MCP send_message: input rejected", "err", err, "size", len(args.Input))
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	if input == "" {
		return TurnResponse{}, fmt.Errorf("input is required")
	}

	res, err := s.engine.Invoke(ctx, args.Session(), input)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("send_message failed: %w", err)
	}
	return toResponse(res), nil
}

func (s *Server) handleResume(ctx context.Context, _ mcp.CallToolRequest, args ResumeArgs) (TurnResponse, error) {
	instruction, err := runner.SanitizeInput(args.Instruction)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("instruction rejected: %w", err)
	}

	res, err := s.engine.Resume(ctx, args.Session(), domain.Decision{Accept: args.Accept, Instruction: instruction})
	if err != nil {
		return TurnResponse{}, fmt.Errorf("resume_review failed: %w", err)
	}
	return toResponse(res), nil
}

func (s *Server) handleGetThread(ctx context.Context, _ mcp.CallToolRequest, args ThreadArgs) (*domain.Checkpoint, error) {
	cp, err := s.engine.State(ctx, args.Session())
	if err != nil {
		return nil, fmt.Errorf("get_thread failed: %w", err)
	}
	return cp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("cinegraph://tools", "Capability contracts",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Tools())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tools: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "cinegraph://tools",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
