/*
Package botflow is a conditional response engine for chat-bot flows.

A flow is a graph of nodes. Each node can carry conditional rules that inspect
the user's variables and pick one response: its text, keyboard and format, and
whether the bot should wait for the user's next message to fill a variable.

# Concept

Variables are looked up in two tiers: a durable per-user record (memory, file,
Redis or SQL) and a volatile session cache. Rules are evaluated in descending
priority and the first one that holds wins; when none does, the node's fallback
is shown. Templates substitute {name} placeholders, first from the rule's own
variables and then from everything else the user is known to have.

Conversation state remembers the last node shown and any pending wait so the
next text, photo or button press can be routed to the right variable.

# Usage

	cfg := &config.Config{
		FlowPath:     "flow.yaml",
		StateStore:   config.StoreMemory,
		UserStore:    config.StoreMemory,
		MaxInputSize: 4096,
		MaxChain:     10,
	}
	bot, err := botflow.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer bot.Close()

	res, err := bot.Handle(ctx, dispatch.Event{UserID: "42", Kind: dispatch.EventCommand, Command: "/start"})

The cmd/botflow binary serves the same engine over HTTP and offers offline
validation, graph export and response previews.
*/
package botflow
