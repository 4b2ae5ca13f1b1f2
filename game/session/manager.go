package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/grid-tactics/game/minigame"
	"github.com/wricardo/grid-tactics/game/scenario"
	"github.com/wricardo/grid-tactics/game/service"
	"github.com/wricardo/grid-tactics/pkg/logger"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds the retries when a generated id collides.
const maxIDAttempts = 16

// Manager handles encounter session lifecycle. Sessions live in memory only.
type Manager struct {
	sessions map[string]*service.Session
	options  []minigame.Option
	log      logrus.FieldLogger
	now      func() time.Time
	mu       sync.RWMutex
}

// NewManager creates a new session manager. The options are passed to every
// minigame it builds.
func NewManager(opts ...minigame.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		options:  opts,
		log:      logger.Component("session"),
		now:      time.Now,
	}
}

// Create builds the scenario and stores it under id. An empty id gets a
// random 4-character one.
func (m *Manager) Create(id string, def *scenario.Definition) (*service.Session, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: definition is nil", scenario.ErrInvalidScenario)
	}
	if strings.ContainsAny(id, "/ ") {
		return nil, ErrInvalidSessionID
	}

	game, err := minigame.New(def, m.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create minigame: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if id, err = m.uniqueSessionID(); err != nil {
			return nil, err
		}
	} else if m.sessionExists(id) {
		// Check if session already exists (case-insensitive)
		return nil, ErrSessionAlreadyExists
	}

	now := m.now()
	session := &service.Session{
		ID:         id,
		ScenarioID: def.ID,
		Game:       game,
		Definition: def,
		CreatedAt:  now,
	}
	session.Touch(now)
	m.sessions[strings.ToLower(id)] = session

	m.log.WithFields(logrus.Fields{
		"session_id":  id,
		"scenario_id": def.ID,
		"minigame":    def.MinigameType,
	}).Info("Session created")
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, def *scenario.Definition) (*service.Session, error) {
	// Try to get existing session first
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	// Create new session if not found
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, def)
	}

	return nil, err
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sortSessions(result)
	return result
}

// Delete removes a session and releases its minigame
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)

	session.Lock()
	session.Game.Cleanup()
	session.Unlock()

	m.log.WithField("session_id", session.ID).Info("Session deleted")
	return nil
}

// Reset rebuilds the session's minigame from its definition
func (m *Manager) Reset(id string) (*service.Session, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	game, err := minigame.New(session.Definition, m.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild minigame: %w", err)
	}

	session.Lock()
	session.Game.Cleanup()
	session.Game = game
	session.Unlock()

	if err := m.UpdateLastAccessed(id); err != nil {
		return nil, err
	}

	m.log.WithField("session_id", session.ID).Info("Session reset")
	return session, nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.Touch(m.now())
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.log.WithField("removed", removed).Info("Expired sessions cleaned up")
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// uniqueSessionID draws ids until one is free. Callers hold the write lock.
func (m *Manager) uniqueSessionID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := generateSessionID()
		if err != nil {
			return "", err
		}
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a free id", ErrInvalidSessionID)
}

// generateSessionID generates a random 4-character session ID
func generateSessionID() (string, error) {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// sortSessions orders sessions by creation time, then id.
func sortSessions(sessions []*service.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
