package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/dispatch"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FlowURI is the resource exposing the loaded flow.
const FlowURI = "botflow://flow"

// Bot is what the MCP server needs from the engine.
type Bot interface {
	Handle(ctx context.Context, ev dispatch.Event) (*dispatch.Result, error)
	Respond(ctx context.Context, nodeID, userID string) (*domain.Response, error)
}

// StateReader loads conversation state.
type StateReader interface {
	Load(ctx context.Context, userID string) (*domain.ConversationState, error)
}

// Server wraps a Bot and exposes it as an MCP Server.
type Server struct {
	bot       Bot
	states    StateReader
	loader    ports.FlowLoader
	logger    *slog.Logger
	mcpServer *server.MCPServer
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
func NewServer(bot Bot, states StateReader, loader ports.FlowLoader, version string, opts ...Option) *Server {
	s := &Server{
		bot:       bot,
		states:    states,
		loader:    loader,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("botflow-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: send_event
	eventTool := mcp.NewTool("send_event",
		mcp.WithDescription("Send a user event (command, button callback, text or media) and get the bot's replies."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Chat user id")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("command, callback, text or media")),
		mcp.WithString("command", mcp.Description("Command such as /start (kind=command)")),
		mcp.WithString("data", mcp.Description("Callback data (kind=callback)")),
		mcp.WithString("text", mcp.Description("Message text (kind=text)")),
		mcp.WithString("media", mcp.Description("photo, video, audio or document (kind=media)")),
		mcp.WithString("file_id", mcp.Description("Uploaded file id (kind=media)")),
		mcp.WithOutputSchema[dispatch.Result](),
	)
	s.mcpServer.AddTool(eventTool, mcp.NewStructuredToolHandler(s.handleSendEvent))

	// TOOL: respond
	respondTool := mcp.NewTool("respond",
		mcp.WithDescription("Resolve a node's conditional response for a user."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to resolve")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Chat user id")),
		mcp.WithOutputSchema[domain.Response](),
	)
	s.mcpServer.AddTool(respondTool, mcp.NewStructuredToolHandler(s.handleRespond))

	// TOOL: get_state
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get a user's conversation state: last node and pending waits."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Chat user id")),
	), s.handleGetState)

	// TOOL: get_flow
	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the full flow definition for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := s.flowJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list nodes failed: %v", err)), nil
		}
		return mcp.NewToolResultText(data), nil
	})
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func (s *Server) handleSendEvent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (dispatch.Result, error) {
	ev := dispatch.Event{
		UserID:  stringArg(args, "user_id"),
		Kind:    dispatch.EventKind(stringArg(args, "kind")),
		Command: stringArg(args, "command"),
		Data:    stringArg(args, "data"),
		Text:    stringArg(args, "text"),
		Media:   domain.InputMode(stringArg(args, "media")),
		FileID:  stringArg(args, "file_id"),
	}

	res, err := s.bot.Handle(ctx, ev)
	if err != nil {
		s.logger.Warn("MCP send_event rejected", "user_id", ev.UserID, "err", err)
		return dispatch.Result{}, fmt.Errorf("event rejected: %w", err)
	}
	return *res, nil
}

func (s *Server) handleRespond(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Response, error) {
	resp, err := s.bot.Respond(ctx, stringArg(args, "node_id"), stringArg(args, "user_id"))
	if err != nil {
		return domain.Response{}, fmt.Errorf("respond failed: %w", err)
	}
	return *resp, nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, _ := request.GetArguments()["user_id"].(string)
	state, err := s.states.Load(ctx, userID)
	if errors.Is(err, domain.ErrStateNotFound) {
		state = domain.NewConversationState(userID)
	} else if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load state failed: %v", err)), nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) flowJSON() (string, error) {
	nodes, err := s.loader.ListNodes()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(viewNodes(nodes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FlowURI, "Current Flow Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.flowJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to list nodes: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FlowURI,
				MIMEType: "application/json",
				Text:     data,
			},
		}, nil
	})
}
