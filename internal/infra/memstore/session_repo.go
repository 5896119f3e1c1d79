package memstore

import (
	"context"
	"sync"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps sessions in process memory. Find and Save copy the
// record so callers never share a mutable struct across goroutines.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[int64]model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[int64]model.Session)}
}

func (r *SessionRepo) Find(ctx context.Context, userID int64) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := sess
	return &cp, nil
}

func (r *SessionRepo) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.UserID] = *sess
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}
