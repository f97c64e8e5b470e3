package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/dispatch"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	events []dispatch.Event
	err    error
}

func (f *fakeBot) Handle(ctx context.Context, ev dispatch.Event) (*dispatch.Result, error) {
	f.events = append(f.events, ev)
	if f.err != nil {
		return nil, f.err
	}
	return &dispatch.Result{Responses: []*domain.Response{{Text: "hello " + ev.UserID}}}, nil
}

func (f *fakeBot) Respond(ctx context.Context, nodeID, userID string) (*domain.Response, error) {
	if nodeID == "missing" {
		return nil, domain.ErrNodeNotFound
	}
	return &domain.Response{Text: nodeID + ":" + userID}, nil
}

func newTestServer(t *testing.T, bot Bot) (*Server, *memory.Store) {
	t.Helper()
	loader, err := memory.NewFromNodes(
		domain.Node{
			ID:   "start",
			Type: domain.NodeTypeStart,
			Text: "Hi",
			Conditions: &domain.RuleSet{
				Rules: []domain.ConditionRule{{
					ID:            "known",
					Condition:     domain.Equals{Value: "Ana"},
					VariableNames: []string{"name"},
					Template:      "Hi {name}",
				}},
			},
		},
	)
	require.NoError(t, err)
	states := memory.NewStore()
	return NewServer(bot, states, loader, "test"), states
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestSendEvent(t *testing.T) {
	bot := &fakeBot{}
	s, _ := newTestServer(t, bot)

	args := map[string]any{"user_id": "u1", "kind": "command", "command": "/start"}
	res, err := s.handleSendEvent(context.Background(), callRequest(args), args)
	require.NoError(t, err)

	require.Len(t, bot.events, 1)
	assert.Equal(t, dispatch.EventCommand, bot.events[0].Kind)
	assert.Equal(t, "/start", bot.events[0].Command)
	require.Len(t, res.Responses, 1)
	assert.Equal(t, "hello u1", res.Responses[0].Text)
}

func TestSendEvent_Error(t *testing.T) {
	bot := &fakeBot{err: errors.New("boom")}
	s, _ := newTestServer(t, bot)

	args := map[string]any{"user_id": "u1", "kind": "text", "text": "x"}
	_, err := s.handleSendEvent(context.Background(), callRequest(args), args)
	assert.ErrorContains(t, err, "boom")
}

func TestRespond(t *testing.T) {
	s, _ := newTestServer(t, &fakeBot{})

	args := map[string]any{"node_id": "start", "user_id": "u2"}
	resp, err := s.handleRespond(context.Background(), callRequest(args), args)
	require.NoError(t, err)
	assert.Equal(t, "start:u2", resp.Text)

	args["node_id"] = "missing"
	_, err = s.handleRespond(context.Background(), callRequest(args), args)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestGetState(t *testing.T) {
	s, states := newTestServer(t, &fakeBot{})
	ctx := context.Background()

	state := domain.NewConversationState("u1")
	state.LastNodeID = "start"
	require.NoError(t, states.Save(ctx, "u1", state))

	result, err := s.handleGetState(ctx, callRequest(map[string]any{"user_id": "u1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var got domain.ConversationState
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, "start", got.LastNodeID)

	// Unknown users get a fresh state.
	result, err = s.handleGetState(ctx, callRequest(map[string]any{"user_id": "ghost"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestFlowJSON(t *testing.T) {
	s, _ := newTestServer(t, &fakeBot{})

	data, err := s.flowJSON()
	require.NoError(t, err)

	var nodes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "start", nodes[0]["id"])

	rules, ok := nodes[0]["rules"].([]any)
	require.True(t, ok)
	require.Len(t, rules, 1)
	rule := rules[0].(map[string]any)
	assert.Equal(t, "equals", rule["kind"])
	assert.Equal(t, "Ana", rule["expected"])
}
