// Package mcp exposes the reflection orchestrator as an MCP server so LLM
// hosts can drive check-in conversations as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/barfet/wellbeing-check-in-agent/internal/logging"
	"github.com/barfet/wellbeing-check-in-agent/internal/orchestration"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// TurnOutput mirrors the HTTP turn response so tool callers can round-trip
// state between calls.
type TurnOutput struct {
	AgentResponse string                    `json:"agent_response" jsonschema_description:"The agent's question or final summary"`
	NextState     *domain.ConversationState `json:"next_state" jsonschema_description:"Conversation state to pass back on the next call"`
	IsFinalTurn   bool                      `json:"is_final_turn" jsonschema_description:"True when the conversation has concluded"`
}

// Server wraps the orchestrator and exposes it over MCP stdio.
type Server struct {
	orchestrator *orchestration.Orchestrator
	mcpServer    *server.MCPServer
	logger       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer builds the MCP server and registers the reflection tools.
func NewServer(orc *orchestration.Orchestrator, version string, opts ...Option) *Server {
	s := &Server{
		orchestrator: orc,
		mcpServer:    server.NewMCPServer("checkin-mcp", version),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_reflection",
		mcp.WithDescription("Start a new reflection conversation. Returns the opening question and the conversation state."),
		mcp.WithString("topic", mcp.Description("Topic to reflect on (optional)")),
		mcp.WithOutputSchema[TurnOutput](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	continueTool := mcp.NewTool("continue_reflection",
		mcp.WithDescription("Continue a reflection conversation with the user's reply. Pass the state returned by the previous call."),
		mcp.WithString("user_input", mcp.Required(), mcp.Description("The user's reply to the agent's last question")),
		mcp.WithString("state", mcp.Required(), mcp.Description("JSON conversation state from the previous turn")),
		mcp.WithOutputSchema[TurnOutput](),
	)
	s.mcpServer.AddTool(continueTool, mcp.NewStructuredToolHandler(s.handleContinue))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnOutput, error) {
	topic, _ := args["topic"].(string)
	state := domain.NewConversationState(topic)
	return s.runTurn(ctx, state)
}

func (s *Server) handleContinue(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnOutput, error) {
	input, _ := args["user_input"].(string)
	stateJSON, _ := args["state"].(string)
	if input == "" {
		return TurnOutput{}, fmt.Errorf("user_input is required")
	}
	if stateJSON == "" {
		return TurnOutput{}, fmt.Errorf("state is required")
	}

	var state domain.ConversationState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return TurnOutput{}, fmt.Errorf("invalid state: %w", err)
	}
	state.AppendUser(input)
	return s.runTurn(ctx, &state)
}

func (s *Server) runTurn(ctx context.Context, state *domain.ConversationState) (TurnOutput, error) {
	result, err := s.orchestrator.Run(ctx, state)
	if err != nil {
		s.logger.Error("turn failed", "err", err)
		return TurnOutput{}, fmt.Errorf("turn failed: %w", err)
	}
	return TurnOutput{
		AgentResponse: result.AgentOutput,
		NextState:     result.State,
		IsFinalTurn:   result.IsFinal,
	}, nil
}
