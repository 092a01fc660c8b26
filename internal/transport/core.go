package transport

import "bondstream/internal/model"

// Core is the narrow slice of the orchestrator (implemented by
// internal/engine) that the Transport Adapter needs: registering and
// tearing down a session's subscriber-registry entry, and turning a
// subscribe/unsubscribe request into registry state plus the initial
// snapshot the client should see.
type Core interface {
	// RegisterSession creates the session's entry in the Subscriber
	// Registry with its default token-bucket parameters.
	RegisterSession(sessionID string)

	// UnregisterSession tears down everything the registry holds for a
	// session that disconnected.
	UnregisterSession(sessionID string)

	// Subscribe validates and installs a new subscription for sessionID,
	// returning the subscription id and the current snapshot of every
	// instrument it admits (for the initial-data frame).
	Subscribe(sessionID string, req model.SubscribeRequest) (subscriptionID string, initial []*model.Instrument, err error)

	// Unsubscribe removes subscriptionID from sessionID.
	Unsubscribe(sessionID, subscriptionID string) error
}
