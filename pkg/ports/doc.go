/*
Package ports defines the driven ports (interfaces) for the botflow engine.

These interfaces decouple the resolution core from storage backends and flow sources,
so the same engine runs against in-memory maps in tests and Redis or SQL in production.

# Key Interfaces

  - UserRecordStore: the durable variable tier (authoritative, may be slow or unavailable).
  - VolatileStore: the volatile variable tier (fast, session scoped, may be stale).
  - StateStore: persists per-user ConversationState.
  - DistributedLocker: serialises event handling for one user across replicas.
  - FlowLoader: retrieves flow nodes by id or command.
*/
package ports
