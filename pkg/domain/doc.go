/*
Package domain contains the core domain models of the botflow engine.

It defines the entities that drive conditional responses on a chat-bot flow graph:
condition rules and rule sets owned by nodes, the keyboards attached to them, the
per-user conversation state that records pending input collection, and the response
handed to the transport layer. The package is kept free of I/O and persistence.

# Key Entities

  - Node: a point in the flow graph (command, message or input collection).
  - ConditionRule: one declarative branch of a conditional response.
  - RuleSet: the ordered rules plus fallback owned by a node.
  - ConversationState: per-user waiting flags (conditional and generic input).
  - Response: text, format mode and keyboard produced for one event.
*/
package domain
