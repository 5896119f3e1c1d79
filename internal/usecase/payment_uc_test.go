//go:build !integration

package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/infra/memstore"
)

type fulfillCall struct {
	ChatID       int64
	UserID       int64
	DurationDays int
	PlanLabel    string
}

type MockFulfillment struct {
	mu    sync.Mutex
	Calls []fulfillCall

	FulfillFunc func(ctx context.Context, chatID, userID int64, durationDays int, planLabel, lang string) error
}

var _ FulfillmentPipeline = (*MockFulfillment)(nil)

func (m *MockFulfillment) Fulfill(ctx context.Context, chatID, userID int64, durationDays int, planLabel, lang string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, fulfillCall{ChatID: chatID, UserID: userID, DurationDays: durationDays, PlanLabel: planLabel})
	m.mu.Unlock()
	if m.FulfillFunc != nil {
		return m.FulfillFunc(ctx, chatID, userID, durationDays, planLabel, lang)
	}
	return nil
}

type paymentFixture struct {
	uc          *paymentUC
	gateway     *MockPaymentGateway
	fulfillment *MockFulfillment
	transport   *MockChatTransport
}

func newPaymentFixture(t *testing.T, dev bool) *paymentFixture {
	t.Helper()
	transport := NewMockChatTransport()
	delivery := NewDeliveryEngine(transport, newTestLocales(t), testDeliveryConfig(), newTestLogger())
	delivery.SetPace(0, 0)
	gateway := &MockPaymentGateway{}
	fulfillment := &MockFulfillment{}
	uc := NewPaymentUseCase(
		memstore.NewIntentRepo(),
		model.DefaultCatalog(),
		gateway,
		fulfillment,
		delivery,
		time.Hour,
		dev,
		newTestLogger(),
	)
	return &paymentFixture{uc: uc, gateway: gateway, fulfillment: fulfillment, transport: transport}
}

func TestPaymentUC_CreateIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown product is rejected", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		if _, _, err := f.uc.CreateIntent(ctx, "product_z", 42, 42); !errors.Is(err, domain.ErrInvalidProduct) {
			t.Fatalf("expected ErrInvalidProduct, got %v", err)
		}
	})

	t.Run("gateway receives catalog price and metadata", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		var gotAmount int64
		var gotMeta map[string]string
		f.gateway.CreatePaymentFunc = func(ctx context.Context, amountRUB int64, description string, meta map[string]string) (string, string, error) {
			gotAmount = amountRUB
			gotMeta = meta
			return "pay-9", "https://pay.example/pay-9", nil
		}

		payURL, intentID, err := f.uc.CreateIntent(ctx, "product_b", 42, 43)
		if err != nil {
			t.Fatalf("CreateIntent failed: %v", err)
		}
		if payURL != "https://pay.example/pay-9" || intentID != "pay-9" {
			t.Errorf("unexpected result: url=%q id=%q", payURL, intentID)
		}
		if gotAmount != 900 {
			t.Errorf("expected 900 RUB for product_b, got %d", gotAmount)
		}
		if gotMeta["product_id"] != "product_b" || gotMeta["user_id"] != "42" || gotMeta["chat_id"] != "43" {
			t.Errorf("unexpected metadata: %v", gotMeta)
		}
	})

	t.Run("gateway failure surfaces", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		f.gateway.CreatePaymentFunc = func(ctx context.Context, amountRUB int64, description string, meta map[string]string) (string, string, error) {
			return "", "", domain.ErrGatewayRequest
		}
		if _, _, err := f.uc.CreateIntent(ctx, "product_a", 42, 42); !errors.Is(err, domain.ErrGatewayRequest) {
			t.Fatalf("expected ErrGatewayRequest, got %v", err)
		}
	})
}

func TestPaymentUC_PollStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown intent is not found", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		if got := f.uc.PollStatus(ctx, "nope"); got != model.IntentStatusNotFound {
			t.Errorf("expected not_found, got %s", got)
		}
	})

	t.Run("pending while provider says pending", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		_, id, err := f.uc.CreateIntent(ctx, "product_a", 42, 42)
		if err != nil {
			t.Fatalf("CreateIntent failed: %v", err)
		}
		if got := f.uc.PollStatus(ctx, id); got != model.IntentStatusPending {
			t.Errorf("expected pending, got %s", got)
		}
	})

	t.Run("provider errors read as pending", func(t *testing.T) {
		f := newPaymentFixture(t, false)
		f.gateway.QueryStatusFunc = func(ctx context.Context, paymentID string) (model.IntentStatus, error) {
			return model.IntentStatusNotFound, domain.ErrGatewayRequest
		}
		_, id, _ := f.uc.CreateIntent(ctx, "product_a", 42, 42)
		if got := f.uc.PollStatus(ctx, id); got != model.IntentStatusPending {
			t.Errorf("expected pending on gateway error, got %s", got)
		}
	})

	t.Run("expired intent reads as not_found and is evicted", func(t *testing.T) {
		intents := memstore.NewIntentRepo()
		transport := NewMockChatTransport()
		delivery := NewDeliveryEngine(transport, newTestLocales(t), testDeliveryConfig(), newTestLogger())
		delivery.SetPace(0, 0)
		uc := NewPaymentUseCase(intents, model.DefaultCatalog(), &MockPaymentGateway{}, &MockFulfillment{}, delivery, time.Hour, false, newTestLogger())

		stale := &model.PaymentIntent{
			ID:        "pay-old",
			ProductID: "product_a",
			UserID:    42,
			ChatID:    42,
			Status:    model.IntentStatusPending,
			CreatedAt: time.Now().Add(-2 * time.Hour),
		}
		if err := intents.Save(ctx, stale); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if got := uc.PollStatus(ctx, "pay-old"); got != model.IntentStatusNotFound {
			t.Errorf("expected not_found for expired intent, got %s", got)
		}
		if _, err := intents.Find(ctx, "pay-old"); !errors.Is(err, domain.ErrIntentNotFound) {
			t.Errorf("expired intent must be evicted, got %v", err)
		}
	})

	t.Run("dev mode reports success for known intents", func(t *testing.T) {
		f := newPaymentFixture(t, true)
		_, id, _ := f.uc.CreateIntent(ctx, "product_a", 42, 42)
		if got := f.uc.PollStatus(ctx, id); got != model.IntentStatusSucceeded {
			t.Errorf("expected succeeded in dev mode, got %s", got)
		}
	})
}

func TestPaymentUC_ConfirmAndFulfillExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, true)

	_, id, err := f.uc.CreateIntent(ctx, "product_b", 42, 43)
	if err != nil {
		t.Fatalf("CreateIntent failed: %v", err)
	}

	if !f.uc.ConfirmAndFulfill(ctx, id, "ru") {
		t.Fatal("first confirmation should fulfill")
	}
	if f.uc.ConfirmAndFulfill(ctx, id, "ru") {
		t.Fatal("second confirmation must not fulfill again")
	}

	if len(f.fulfillment.Calls) != 1 {
		t.Fatalf("expected exactly one fulfillment, got %d", len(f.fulfillment.Calls))
	}
	call := f.fulfillment.Calls[0]
	if call.UserID != 42 || call.ChatID != 43 || call.DurationDays != 90 {
		t.Errorf("unexpected fulfillment call: %+v", call)
	}

	if got := f.uc.PollStatus(ctx, id); got != model.IntentStatusNotFound {
		t.Errorf("claimed intent should poll as not_found, got %s", got)
	}
}

func TestPaymentUC_ConfirmAndFulfillConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, true)
	_, id, err := f.uc.CreateIntent(ctx, "product_a", 42, 42)
	if err != nil {
		t.Fatalf("CreateIntent failed: %v", err)
	}

	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- f.uc.ConfirmAndFulfill(ctx, id, "ru")
		}()
	}
	wg.Wait()
	close(wins)

	var count int
	for won := range wins {
		if won {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one winner, got %d", count)
	}
	if len(f.fulfillment.Calls) != 1 {
		t.Errorf("expected one fulfillment call, got %d", len(f.fulfillment.Calls))
	}
}
