package memstore

import (
	"context"
	"sync"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/repository"
)

var _ repository.IntentRepository = (*IntentRepo)(nil)

// IntentRepo keeps pending payment intents in process memory. Take
// removes the record under the same lock that reads it, so at most one
// caller ever claims a given intent.
type IntentRepo struct {
	mu      sync.Mutex
	intents map[string]model.PaymentIntent
}

func NewIntentRepo() *IntentRepo {
	return &IntentRepo{intents: make(map[string]model.PaymentIntent)}
}

func (r *IntentRepo) Save(ctx context.Context, intent *model.PaymentIntent) error {
	if intent == nil || intent.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents[intent.ID] = *intent
	return nil
}

func (r *IntentRepo) Find(ctx context.Context, id string) (*model.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.intents[id]
	if !ok {
		return nil, domain.ErrIntentNotFound
	}
	cp := in
	return &cp, nil
}

func (r *IntentRepo) Take(ctx context.Context, id string) (*model.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.intents[id]
	if !ok {
		return nil, domain.ErrIntentNotFound
	}
	delete(r.intents, id)
	cp := in
	return &cp, nil
}

func (r *IntentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.intents, id)
	return nil
}
