package memstore

import (
	"context"
	"sync"

	"telegram-vpn-shop/internal/domain/ports/repository"
)

var _ repository.MarkerRepository = (*markerRepo)(nil)

type markerRepo struct {
	mu   sync.RWMutex
	seen map[int64]int
}

func NewMarkerRepo() *markerRepo {
	return &markerRepo{seen: make(map[int64]int)}
}

func (r *markerRepo) Seen(_ context.Context, chatID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seen[chatID], nil
}

func (r *markerRepo) MarkSeen(_ context.Context, chatID int64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[chatID] = count
	return nil
}
