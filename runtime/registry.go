package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"sync"
)

// Registry maps logical identities to live transport sessions. It keeps an
// explicit bidirectional index (userID↔sessionID) so disconnect cleanup is a
// single lookup instead of a scan over every connection, plus the
// sessionID→sink table used to resolve deliveries.
//
// A session appears in sinks as soon as the transport is established;
// it appears in byUser/bySession only once the user has identified.
type Registry struct {
	mu        sync.RWMutex
	byUser    map[domain.UserID]domain.SessionID
	bySession map[domain.SessionID]domain.UserID
	sinks     map[domain.SessionID]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:    make(map[domain.UserID]domain.SessionID),
		bySession: make(map[domain.SessionID]domain.UserID),
		sinks:     make(map[domain.SessionID]contract.EventSink),
	}
}

// Attach registers a connection's receiving end before any identity is known.
func (r *Registry) Attach(sessionID domain.SessionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[sessionID] = sink
}

// Identify binds the session, replacing any prior session for that user.
// The last connection wins; this is not an error. The replaced session
// keeps its sink until its own transport teardown calls Remove, which by
// then finds no identity left to clean up.
func (r *Registry) Identify(s domain.UserSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[s.UserID]; ok && old != s.SessionID {
		delete(r.bySession, old)
	}
	if prior, ok := r.bySession[s.SessionID]; ok && prior != s.UserID {
		delete(r.byUser, prior)
	}
	r.byUser[s.UserID] = s.SessionID
	r.bySession[s.SessionID] = s.UserID
}

// Lookup resolves a user's live session. Absence means offline: the caller
// drops the event silently, no queuing, no error surfaced to the sender.
func (r *Registry) Lookup(userID domain.UserID) (domain.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.byUser[userID]
	return sessionID, ok
}

// Remove tears down a session: its sink and, if it had identified, its
// identity binding. Returns the owning user when there was one.
func (r *Registry) Remove(sessionID domain.SessionID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sinks, sessionID)

	userID, ok := r.bySession[sessionID]
	if !ok {
		return "", false
	}
	delete(r.bySession, sessionID)
	if current, exists := r.byUser[userID]; exists && current == sessionID {
		delete(r.byUser, userID)
	}
	return userID, true
}

func (r *Registry) Sink(sessionID domain.SessionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[sessionID]
	return sink, ok
}

// OnlineUsers is the full current key set of identified users.
func (r *Registry) OnlineUsers() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.UserID, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	return users
}

// ConnectedSessions lists every attached session, identified or not.
// Presence broadcasts go to all of them.
func (r *Registry) ConnectedSessions() []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]domain.SessionID, 0, len(r.sinks))
	for sessionID := range r.sinks {
		sessions = append(sessions, sessionID)
	}
	return sessions
}
