package dispatch_test

import (
	"context"
	"testing"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/internal/variables"
	"github.com/aretw0/botflow/pkg/adapters/cache"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/dispatch"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flowNodes() []domain.Node {
	return []domain.Node{
		{
			ID: "start", Type: domain.NodeTypeStart, Command: "/start", Text: "Hi {first_name}",
			Conditions: &domain.RuleSet{Rules: []domain.ConditionRule{
				{
					ID: "ask_city", Priority: 1, Condition: domain.NotExists{}, VariableNames: []string{"city"},
					Template: "Where do you live?", WaitForInput: true, InputVariable: "city", NextNodeID: "menu",
					SkipButtons: []domain.SkipButton{{Text: "Skip", TargetNodeID: "menu"}},
					Keyboard: &domain.KeyboardSpec{Type: domain.KeyboardInline, Buttons: []domain.ButtonSpec{
						{Text: "Skip", Target: "menu"},
					}},
				},
				{ID: "known", Condition: domain.Exists{}, VariableNames: []string{"city"}, Template: "Welcome back from {city}"},
			}},
		},
		{
			ID: "menu", Type: domain.NodeTypeMessage, Text: "Menu",
			Keyboard: &domain.KeyboardSpec{Type: domain.KeyboardInline, Buttons: []domain.ButtonSpec{
				{Text: "Basic", SetVariable: "plan", SetValue: "basic"},
				{Text: "Pro", SetVariable: "plan", SetValue: "pro", Target: "done"},
				{Text: "Help", Action: domain.ActionCommand, Command: "/help"},
				{ID: "btn_profile", Text: "Profile", Target: "profile"},
			}},
		},
		{
			ID: "profile", Type: domain.NodeTypeInput, Text: "Send a photo",
			Input: &domain.InputConfig{Variable: "avatar", Modes: []domain.InputMode{domain.InputPhoto}, Next: "done"},
		},
		{ID: "done", Type: domain.NodeTypeMessage, Text: "Thanks", Next: "end"},
		{ID: "end", Type: domain.NodeTypeMessage, Text: "Bye"},
		{ID: "help", Type: domain.NodeTypeCommand, Command: "/help", Text: "Help text"},
		{ID: "loop_a", Type: domain.NodeTypeMessage, Text: "A", Next: "loop_b"},
		{ID: "loop_b", Type: domain.NodeTypeMessage, Text: "B", Next: "loop_a"},
	}
}

type harness struct {
	d      *dispatch.Dispatcher
	users  *memory.UserStore
	states *memory.Store
}

func newHarness(t *testing.T, opts ...dispatch.Option) *harness {
	t.Helper()
	loader, err := memory.NewFromNodes(flowNodes()...)
	require.NoError(t, err)

	users := memory.NewUserStore()
	require.NoError(t, users.Put("u1", domain.UserRecord{"first_name": "Ana"}))
	states := memory.NewStore()
	engine := runtime.NewEngine(variables.New(users, cache.NewVolatile()), states)

	return &harness{
		d:      dispatch.New(loader, engine, session.NewManager(states), opts...),
		users:  users,
		states: states,
	}
}

func (h *harness) handle(t *testing.T, ev dispatch.Event) *dispatch.Result {
	t.Helper()
	if ev.UserID == "" {
		ev.UserID = "u1"
	}
	res, err := h.d.Handle(context.Background(), ev)
	require.NoError(t, err)
	return res
}

func texts(res *dispatch.Result) []string {
	var out []string
	for _, r := range res.Responses {
		out = append(out, r.Text)
	}
	return out
}

func TestDispatcher_ConditionalCollection(t *testing.T) {
	h := newHarness(t)

	res := h.handle(t, dispatch.Event{Kind: dispatch.EventCommand, Command: "/start"})
	require.Len(t, res.Responses, 1)
	assert.Equal(t, "Where do you live?", res.Responses[0].Text)
	assert.True(t, res.Responses[0].AwaitingInput)

	res = h.handle(t, dispatch.Event{Kind: dispatch.EventText, Text: "Paris"})
	require.NotNil(t, res.Consumed)
	assert.Equal(t, "city", res.Consumed.Variable)
	assert.True(t, res.Consumed.Conditional)
	assert.Equal(t, []string{"Menu"}, texts(res))

	rec, err := h.users.LoadUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Paris", rec[domain.UserDataKey].(map[string]any)["city"])

	res = h.handle(t, dispatch.Event{Kind: dispatch.EventCommand, Command: "start"})
	assert.Equal(t, []string{"Welcome back from Paris"}, texts(res))
}

func TestDispatcher_SkipButton(t *testing.T) {
	h := newHarness(t)

	h.handle(t, dispatch.Event{Kind: dispatch.EventCommand, Command: "/start"})
	res := h.handle(t, dispatch.Event{Kind: dispatch.EventText, Text: "Skip"})
	assert.Nil(t, res.Consumed)
	assert.Equal(t, []string{"Menu"}, texts(res))

	state, err := h.states.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, state.Idle())
	assert.Empty(t, state.PendingSkipButtons)
}

func TestDispatcher_InlineSkipButton(t *testing.T) {
	h := newHarness(t)

	res := h.handle(t, dispatch.Event{Kind: dispatch.EventCommand, Command: "/start"})
	require.Len(t, res.Responses, 1)
	require.NotNil(t, res.Responses[0].Keyboard)
	assert.Equal(t, "menu", res.Responses[0].Keyboard.Inline[0][0].CallbackData)

	res = h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "menu"})
	assert.Nil(t, res.Consumed)
	assert.Equal(t, []string{"Menu"}, texts(res))

	state, err := h.states.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, state.Conditional)
	assert.Empty(t, state.PendingSkipButtons)

	res = h.handle(t, dispatch.Event{Kind: dispatch.EventText, Text: "hello there"})
	assert.Nil(t, res.Consumed)
	assert.True(t, res.Ignored)

	rec, err := h.users.LoadUser(context.Background(), "u1")
	require.NoError(t, err)
	data, _ := rec[domain.UserDataKey].(map[string]any)
	assert.NotContains(t, data, "city")
}

func TestDispatcher_SelectionCallback(t *testing.T) {
	h := newHarness(t)
	h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "menu"})

	res := h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "conditional_plan_basic"})
	require.NotNil(t, res.Consumed)
	assert.Equal(t, "basic", res.Consumed.Value)
	assert.Equal(t, []string{"Menu"}, texts(res), "no target re-renders the same node")

	res = h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "conditional_plan_pro"})
	assert.Equal(t, []string{"Thanks", "Bye"}, texts(res))

	_, err := h.d.Handle(context.Background(), dispatch.Event{UserID: "u1", Kind: dispatch.EventCallback, Data: "conditional_plan_gold"})
	assert.ErrorIs(t, err, dispatch.ErrUnknownCallback)
}

func TestDispatcher_CommandAndNavigationCallbacks(t *testing.T) {
	h := newHarness(t)
	h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "menu"})

	res := h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "cmd_help"})
	assert.Equal(t, []string{"Help text"}, texts(res))

	h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "menu"})
	res = h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "profile"})
	assert.Equal(t, []string{"Send a photo"}, texts(res))
}

func TestDispatcher_MediaInput(t *testing.T) {
	h := newHarness(t)
	h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "profile"})

	res := h.handle(t, dispatch.Event{Kind: dispatch.EventText, Text: "hello"})
	assert.True(t, res.Ignored, "text is not accepted by a photo wait")

	res = h.handle(t, dispatch.Event{Kind: dispatch.EventMedia, Media: domain.InputPhoto, FileID: "file-123"})
	require.NotNil(t, res.Consumed)
	assert.Equal(t, "avatar", res.Consumed.Variable)
	assert.Equal(t, "file-123", res.Consumed.Value)
	assert.Equal(t, []string{"Thanks", "Bye"}, texts(res))
}

func TestDispatcher_TextWithoutWaitIsIgnored(t *testing.T) {
	h := newHarness(t)
	res := h.handle(t, dispatch.Event{Kind: dispatch.EventText, Text: "anyone?"})
	assert.True(t, res.Ignored)
	assert.Empty(t, res.Responses)
}

func TestDispatcher_CommandClearsWaits(t *testing.T) {
	h := newHarness(t)
	h.handle(t, dispatch.Event{Kind: dispatch.EventCommand, Command: "/start"})
	h.handle(t, dispatch.Event{Kind: dispatch.EventCommand, Command: "/help"})

	res := h.handle(t, dispatch.Event{Kind: dispatch.EventText, Text: "Paris"})
	assert.True(t, res.Ignored)
}

func TestDispatcher_ChainLimit(t *testing.T) {
	h := newHarness(t, dispatch.WithMaxChain(3))
	res := h.handle(t, dispatch.Event{Kind: dispatch.EventCallback, Data: "loop_a"})
	assert.Equal(t, []string{"A", "B", "A", "B"}, texts(res))
}

func TestDispatcher_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.d.Handle(ctx, dispatch.Event{Kind: dispatch.EventText, Text: "x"})
	assert.ErrorIs(t, err, dispatch.ErrEmptyUserID)

	_, err = h.d.Handle(ctx, dispatch.Event{UserID: "u1", Kind: dispatch.EventCommand, Command: "/nope"})
	assert.ErrorIs(t, err, dispatch.ErrUnknownCommand)

	_, err = h.d.Handle(ctx, dispatch.Event{UserID: "u1", Kind: dispatch.EventCallback, Data: "nowhere"})
	assert.ErrorIs(t, err, dispatch.ErrUnknownCallback)

	_, err = h.d.Handle(ctx, dispatch.Event{UserID: "u1", Kind: "sticker"})
	assert.ErrorIs(t, err, dispatch.ErrUnsupportedEvent)
}
