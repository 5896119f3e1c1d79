package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo manages user conversational state in Redis. Keys carry a
// TTL so an abandoned flow evaporates on its own.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute // give users time to complete a flow
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func (r *SessionRepo) key(userID int64) string {
	return fmt.Sprintf("flow_session:%d", userID)
}

func (r *SessionRepo) Find(ctx context.Context, userID int64) (*model.Session, error) {
	data, err := r.client.Get(ctx, r.key(userID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepo) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(sess.UserID), data, r.ttl)
}

func (r *SessionRepo) Delete(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, r.key(userID))
}
