package repository

import (
	"context"

	"telegram-vpn-shop/internal/domain/model"
)

// SessionRepository stores per-user conversational state. Keys are
// Telegram user ids; implementations must support concurrent
// read/insert/delete per key.
type SessionRepository interface {
	// Find returns domain.ErrNotFound when no session exists.
	Find(ctx context.Context, userID int64) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session) error
	Delete(ctx context.Context, userID int64) error
}
