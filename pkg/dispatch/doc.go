// Package dispatch routes incoming chat events to flow nodes.
//
// Commands and callback buttons select a node; free text and media are
// consumed by whichever waiting flag is set for the user. Every event for a
// user is handled under that user's session lock.
package dispatch
