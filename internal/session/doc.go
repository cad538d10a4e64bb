// Package session holds the application state machine.
//
// # Reducer
//
// All session state lives in an immutable [State] value. [Update] is a pure function from a
// state and an [Event] to the next state plus the [Effect] values the caller must perform. It
// never does I/O, so every transition can be tested by calling it directly.
//
// # Effects
//
// An [Executor] performs effects against the credential store, the [auth.Location], the history
// service and the story generator. Effects that produce a result (a fetch, a story) return a
// follow-up event that is fed back into [Update].
//
// The interactive UI runs effects as bubbletea commands, so several may be in flight at once.
// The [Controller] is the synchronous driver used by CLI commands: it runs each effect to
// completion before dispatching the next event.
//
// # Ordering
//
// Overlapping refreshes are not sequenced: whichever response arrives last replaces the track
// list. Each login starts a new epoch, and results tagged with an older epoch are dropped, so a
// response that lands after logout can neither restore tracks nor log the next session out.
//
// A second generation cannot start while one is in flight.
package session
