// Package registry is the Subscriber Registry: it tracks connected
// sessions, their subscriptions, and the per-session token bucket and
// pacing state that gate delta admission.
package registry

import (
	"fmt"
	"sync"
	"time"

	"bondstream/internal/model"
)

// subscriber holds everything the registry owns on behalf of one
// connected session. The per-session token bucket and lastSent map are
// mutated only through Registry methods, never directly by session tasks.
type subscriber struct {
	mu            sync.RWMutex
	sessionID     string
	subscriptions map[string]*model.Subscription
	bucket        *tokenBucket
	lastSent      map[string]time.Time // instrumentID -> time of last successful Admit
	fallbackHz    float64              // maxUpdatesPerSecond, used when no subscription specifies a frequency
}

// Registry is the Subscriber Registry. All exported methods are safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	clock       func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		subscribers: make(map[string]*subscriber),
		clock:       time.Now,
	}
}

// Register creates a session with its own token bucket (capacity
// bucketSize, refill rate maxUpdatesPerSecond) and no subscriptions yet.
func (r *Registry) Register(sessionID string, bucketSize, maxUpdatesPerSecond float64) {
	now := r.clock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers[sessionID] = &subscriber{
		sessionID:     sessionID,
		subscriptions: make(map[string]*model.Subscription),
		bucket:        newTokenBucket(bucketSize, maxUpdatesPerSecond, now),
		lastSent:      make(map[string]time.Time),
		fallbackHz:    maxUpdatesPerSecond,
	}
}

// Unregister detaches a session immediately; any deltas already handed to
// the transport for it may be dropped silently by the caller.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, sessionID)
}

// ReconfigureBucket applies new token-bucket parameters to a live session.
func (r *Registry) ReconfigureBucket(sessionID string, bucketSize, maxUpdatesPerSecond float64) error {
	sub, ok := r.subscriberFor(sessionID)
	if !ok {
		return fmt.Errorf("reconfigure bucket %q: %w", sessionID, model.ErrNotFound)
	}
	sub.bucket.reconfigure(bucketSize, maxUpdatesPerSecond, r.clock())
	sub.mu.Lock()
	sub.fallbackHz = maxUpdatesPerSecond
	sub.mu.Unlock()
	return nil
}

// AddSubscription attaches a new subscription to a session.
func (r *Registry) AddSubscription(sessionID string, sub *model.Subscription) error {
	s, ok := r.subscriberFor(sessionID)
	if !ok {
		return fmt.Errorf("add subscription: session %q: %w", sessionID, model.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.ID] = sub
	return nil
}

// RemoveSubscription detaches a subscription from a session.
func (r *Registry) RemoveSubscription(sessionID, subscriptionID string) error {
	s, ok := r.subscriberFor(sessionID)
	if !ok {
		return fmt.Errorf("remove subscription: session %q: %w", sessionID, model.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[subscriptionID]; !ok {
		return fmt.Errorf("remove subscription %q: %w", subscriptionID, model.ErrNotFound)
	}
	delete(s.subscriptions, subscriptionID)
	return nil
}

// LookupInterested returns every session that has at least one
// subscription listing instrumentID.
func (r *Registry) LookupInterested(instrumentID string) []string {
	r.mu.RLock()
	sessions := make([]*subscriber, 0, len(r.subscribers))
	for _, s := range r.subscribers {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	var interested []string
	for _, s := range sessions {
		s.mu.RLock()
		for _, sub := range s.subscriptions {
			if sub.HasInstrument(instrumentID) {
				interested = append(interested, s.sessionID)
				break
			}
		}
		s.mu.RUnlock()
	}
	return interested
}

// MatchingSubscriptions returns every subscription belonging to sessionID
// that lists instrumentID, for the Dispatcher's predicate-gate step. Visitation
// order among multiple matching subscriptions is unspecified; the first
// predicate-admitting one is what the Dispatcher needs, and the Dispatcher
// itself performs the predicate check, so this just hands back candidates.
func (r *Registry) MatchingSubscriptions(sessionID, instrumentID string) []*model.Subscription {
	s, ok := r.subscriberFor(sessionID)
	if !ok {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*model.Subscription
	for _, sub := range s.subscriptions {
		if sub.HasInstrument(instrumentID) {
			matches = append(matches, sub)
		}
	}
	return matches
}

// Admit performs both rate gates for one (session, instrument)
// admission: token-bucket admission, then
// per-instrument pacing. The token is consumed as soon as the bucket admits,
// even when pacing then rejects. On success the admission time is recorded
// as the instrument's last-sent time; there is no separate "mark sent"
// call, so that time is recorded before the caller's predicate check and
// transport send, whether or not a delta is then actually sent.
func (r *Registry) Admit(sessionID, instrumentID string) bool {
	s, ok := r.subscriberFor(sessionID)
	if !ok {
		return false
	}

	now := r.clock()
	if !s.bucket.tryAdmit(now) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	interval := pacingInterval(s, instrumentID)
	last, seen := s.lastSent[instrumentID]
	if seen && now.Sub(last) < interval {
		return false
	}
	s.lastSent[instrumentID] = now
	return true
}

// pacingInterval computes 1000/max(f) over this session's subscriptions
// that include instrumentID, falling back to 1000/maxUpdatesPerSecond when
// none specify a frequency. Must be called with s.mu held.
func pacingInterval(s *subscriber, instrumentID string) time.Duration {
	var maxHz float64
	for _, sub := range s.subscriptions {
		if sub.UpdateFrequency > 0 && sub.HasInstrument(instrumentID) && sub.UpdateFrequency > maxHz {
			maxHz = sub.UpdateFrequency
		}
	}
	if maxHz <= 0 {
		maxHz = s.fallbackHz
	}
	if maxHz <= 0 {
		return 0
	}
	return time.Duration(1000/maxHz) * time.Millisecond
}

func (r *Registry) subscriberFor(sessionID string) (*subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subscribers[sessionID]
	return s, ok
}

// SessionCount returns the number of currently registered sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}
