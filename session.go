package main

import (
	"sync"
	"time"
)

const maxSessions = 100

// SessionIdleTimeout is how long an empty session survives before the
// sweeper reclaims it. Variable so tests can shrink it.
var SessionIdleTimeout = 5 * time.Minute

// Session represents one joinable arena match
type Session struct {
	ID         string
	Name       string
	Game       *Game
	LastActive time.Time
}

// SessionManager handles creation, lookup, and idle reclamation
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	stop     chan struct{}
	once     sync.Once
}

// NewSessionManager creates a new SessionManager and starts the idle
// sweeper.
func NewSessionManager() *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go sm.sweep()
	return sm
}

// Stop halts the idle sweeper
func (sm *SessionManager) Stop() {
	sm.once.Do(func() { close(sm.stop) })
}

// CreateSession creates a new arena session. Returns nil if limit reached.
func (sm *SessionManager) CreateSession(name string, cfg MatchConfig, db *DB, analytics *Analytics) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	game := NewGame(cfg, time.Now().UnixNano())
	game.db = db
	game.analytics = analytics
	sess := &Session{
		ID:         GenerateUUID(),
		Name:       name,
		Game:       game,
		LastActive: time.Now(),
	}
	sm.sessions[sess.ID] = sess
	go game.Run()
	if analytics != nil {
		analytics.SetActiveSessions(len(sm.sessions))
	}
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// MarkActive refreshes a session's idle clock
func (sm *SessionManager) MarkActive(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sess, ok := sm.sessions[id]; ok {
		sess.LastActive = time.Now()
	}
}

// RemovePlayer removes a player from a session
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Game.RemovePlayer(playerID)
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Players: sess.Game.PlayerCount(),
		})
	}
	return list
}

// sweep reclaims sessions that have sat empty past the idle timeout
func (sm *SessionManager) sweep() {
	ticker := time.NewTicker(SessionIdleTimeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-SessionIdleTimeout)
			sm.mu.Lock()
			for id, sess := range sm.sessions {
				if sess.Game.PlayerCount() == 0 && sess.LastActive.Before(cutoff) {
					sess.Game.Stop()
					delete(sm.sessions, id)
				}
			}
			sm.mu.Unlock()
		case <-sm.stop:
			return
		}
	}
}
