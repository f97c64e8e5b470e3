/*
Package session serialises access to each user's conversation state.

Events for one user are processed one at a time: a per-user mutex guards a
single process, and an optional distributed lock extends the guarantee across
replicas sharing a state store.
*/
package session
