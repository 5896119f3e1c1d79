package repository

import (
	"context"

	"telegram-vpn-shop/internal/domain/model"
)

// IntentRepository stores pending payment intents keyed by the
// provider payment id.
//
// Take is the exactly-once primitive: it atomically removes and
// returns the intent, so only one caller can ever observe a given
// pending intent. Every later Take or Find answers
// domain.ErrIntentNotFound.
type IntentRepository interface {
	Save(ctx context.Context, intent *model.PaymentIntent) error
	// Find returns domain.ErrIntentNotFound for unknown ids.
	Find(ctx context.Context, id string) (*model.PaymentIntent, error)
	// Take claims the intent: find + delete in one atomic step.
	Take(ctx context.Context, id string) (*model.PaymentIntent, error)
	Delete(ctx context.Context, id string) error
}
