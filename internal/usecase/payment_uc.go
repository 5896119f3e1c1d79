package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/domain/ports/repository"
	"telegram-vpn-shop/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// CreateIntent registers a payment with the gateway and records a
	// pending intent. Fails with domain.ErrInvalidProduct for an
	// unknown product and domain.ErrGatewayRequest on provider faults.
	CreateIntent(ctx context.Context, productID string, userID, chatID int64) (payURL string, intentID string, err error)

	// PollStatus resolves the current status. Unknown and expired
	// intents answer IntentStatusNotFound; it never returns an error.
	PollStatus(ctx context.Context, intentID string) model.IntentStatus

	// ConfirmAndFulfill claims the intent and, exactly once per
	// intent, notifies the user and runs the fulfillment pipeline
	// synchronously. Calls after the record has been claimed observe
	// not-found and return false.
	ConfirmAndFulfill(ctx context.Context, intentID, lang string) bool
}

type paymentUC struct {
	intents     repository.IntentRepository
	catalog     *model.Catalog
	gateway     adapter.PaymentGateway
	fulfillment FulfillmentPipeline
	delivery    DeliveryEngine
	ttl         time.Duration
	dev         bool // dev mode treats every known intent as paid
	log         *zerolog.Logger
}

func NewPaymentUseCase(
	intents repository.IntentRepository,
	catalog *model.Catalog,
	gateway adapter.PaymentGateway,
	fulfillment FulfillmentPipeline,
	delivery DeliveryEngine,
	ttl time.Duration,
	dev bool,
	logger *zerolog.Logger,
) *paymentUC {
	payLog := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		intents:     intents,
		catalog:     catalog,
		gateway:     gateway,
		fulfillment: fulfillment,
		delivery:    delivery,
		ttl:         ttl,
		dev:         dev,
		log:         &payLog,
	}
}

func (u *paymentUC) CreateIntent(ctx context.Context, productID string, userID, chatID int64) (string, string, error) {
	product, err := u.catalog.Find(productID)
	if err != nil {
		return "", "", err
	}

	meta := map[string]string{
		"product_id": product.ID,
		"user_id":    fmt.Sprintf("%d", userID),
		"chat_id":    fmt.Sprintf("%d", chatID),
	}
	paymentID, payURL, err := u.gateway.CreatePayment(ctx, product.PriceRUB, product.Name, meta)
	if err != nil {
		metrics.IncPayment("error")
		return "", "", err
	}

	intent := &model.PaymentIntent{
		ID:        paymentID,
		ProductID: product.ID,
		UserID:    userID,
		ChatID:    chatID,
		Status:    model.IntentStatusPending,
		CreatedAt: time.Now(),
	}
	if err := u.intents.Save(ctx, intent); err != nil {
		return "", "", err
	}
	metrics.IncPayment("created")
	u.log.Info().Str("intent_id", paymentID).Str("product_id", product.ID).Int64("user_id", userID).Msg("payment intent created")
	return payURL, paymentID, nil
}

func (u *paymentUC) PollStatus(ctx context.Context, intentID string) model.IntentStatus {
	intent, err := u.intents.Find(ctx, intentID)
	if err != nil {
		return model.IntentStatusNotFound
	}
	if intent.Expired(u.ttl, time.Now()) {
		_ = u.intents.Delete(ctx, intentID)
		return model.IntentStatusNotFound
	}
	if u.dev {
		return model.IntentStatusSucceeded
	}
	status, err := u.gateway.QueryStatus(ctx, intentID)
	if err != nil {
		// Provider hiccup: the intent is still pending on our side, so
		// the user is told to check again rather than "not found".
		u.log.Warn().Err(err).Str("intent_id", intentID).Msg("gateway status query failed")
		return model.IntentStatusPending
	}
	return status
}

func (u *paymentUC) ConfirmAndFulfill(ctx context.Context, intentID, lang string) bool {
	intent, err := u.intents.Take(ctx, intentID)
	if err != nil {
		// Already claimed, expired or never existed.
		metrics.IncPayment("not_found")
		return false
	}
	if intent.Expired(u.ttl, time.Now()) {
		metrics.IncPayment("not_found")
		return false
	}

	product, err := u.catalog.Find(intent.ProductID)
	if err != nil {
		u.log.Error().Str("intent_id", intentID).Str("product_id", intent.ProductID).Msg("claimed intent references unknown product")
		return false
	}

	metrics.IncPayment("succeeded")
	metrics.AddPaymentRevenue("rub", product.PriceRUB)
	u.log.Info().Str("intent_id", intentID).Int64("user_id", intent.UserID).Str("product_id", product.ID).Msg("payment confirmed")

	if err := u.delivery.Notify(ctx, intent.ChatID, lang, "payment_confirmed", product.Name, product.PriceRUB); err != nil {
		u.log.Warn().Err(err).Int64("chat_id", intent.ChatID).Msg("confirmation notice failed")
	}

	// A confirmed payment is fulfilled to completion even if the
	// triggering update times out; the generator carries its own
	// timeout.
	fulfillCtx := context.WithoutCancel(ctx)
	if err := u.fulfillment.Fulfill(fulfillCtx, intent.ChatID, intent.UserID, product.DurationDays, product.Name, lang); err != nil {
		u.log.Error().Err(err).Str("intent_id", intentID).Msg("fulfillment failed")
	}
	return true
}
