package adapter

import (
	"context"

	"telegram-vpn-shop/internal/domain/model"
)

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// CreatePayment registers a payment for amount (minor units not
	// used; RUB integer) and returns the provider payment id and the
	// confirmation URL the user must open.
	CreatePayment(ctx context.Context, amountRUB int64, description string, meta map[string]string) (paymentID string, payURL string, err error)

	// QueryStatus resolves the provider-side status. An id the
	// provider does not know maps to IntentStatusNotFound, never to an
	// error.
	QueryStatus(ctx context.Context, paymentID string) (model.IntentStatus, error)
}
