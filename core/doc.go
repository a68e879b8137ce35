// Package realtime manages concurrent real-time audio/text conversation
// sessions against a remote model endpoint.
//
// A Manager owns the session lifecycle: it mints a credential through the
// session-creation collaborator, dials a transport, attaches local audio
// before negotiation, opens the reliable event channel, and folds every
// inbound event into the Registry, the single source of truth for session
// state. Callers that should only see one session work through a
// SessionHandle.
//
// All registry mutation is funneled through a small command set and
// serialized internally, so events from concurrently open sessions can
// never corrupt each other's records. Within one session, events are
// applied in strict arrival order.
package realtime
