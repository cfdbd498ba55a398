package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-core/internal/entity"
)

type memSession struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
}

// NewMemorySessionRepository keeps sessions in process memory. Values are copied
// in and out, so callers never share a Session with the store.
func NewMemorySessionRepository() SessionRepository {
	return &memSession{
		sessions: make(map[string]entity.Session),
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = *session

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return &entity.Session{}, ErrSessionNotFound
	}

	return &session, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}
