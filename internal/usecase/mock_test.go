//go:build !integration

package usecase

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/config"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/infra/i18n"
)

func testDeliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{RevealThreshold: 2000, MaxChunk: 4000, Retries: 2}
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// newTestLocales builds a store from the embedded production locales.
func newTestLocales(t *testing.T) *i18n.Store {
	t.Helper()
	store, err := i18n.NewStore(i18n.LocalesFS, []string{"en", "ru"}, "ru")
	if err != nil {
		t.Fatalf("locale store: %v", err)
	}
	return store
}

// newLocalesFrom builds a single-language store from raw yaml, for
// tests that need exact control over a text.
func newLocalesFrom(t *testing.T, yaml string) *i18n.Store {
	t.Helper()
	fsys := fstest.MapFS{
		"locales/ru.yaml": &fstest.MapFile{Data: []byte(yaml)},
	}
	store, err := i18n.NewStore(fsys, []string{"ru"}, "ru")
	if err != nil {
		t.Fatalf("locale store: %v", err)
	}
	return store
}

type MockDocument struct {
	Name    string
	Caption string
	Data    []byte
}

type MockButtonCall struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

// MockChatTransport records traffic and replays edits, so a test can
// assert on the final text of each message. Any behavior can be
// overridden per test through the *Func fields.
type MockChatTransport struct {
	mu       sync.Mutex
	nextID   int
	order    []int
	messages map[int]string
	deleted  map[int]bool

	Buttons []MockButtonCall
	Docs    []MockDocument
	Photos  []string
	Actions []adapter.ChatAction

	SendMessageFunc    func(ctx context.Context, chatID int64, text string) (int, error)
	EditMessageFunc    func(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessageFunc  func(ctx context.Context, chatID int64, messageID int) error
	SendButtonsFunc    func(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) (int, error)
	SendDocumentFunc   func(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error
	SendPhotoFunc      func(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error
	SendChatActionFunc func(ctx context.Context, chatID int64, action adapter.ChatAction) error
	IsTransientFunc    func(err error) bool
}

var _ adapter.ChatTransport = (*MockChatTransport)(nil)

func NewMockChatTransport() *MockChatTransport {
	return &MockChatTransport{
		messages: make(map[int]string),
		deleted:  make(map[int]bool),
	}
}

func (m *MockChatTransport) record(text string) int {
	m.nextID++
	m.order = append(m.order, m.nextID)
	m.messages[m.nextID] = text
	return m.nextID
}

func (m *MockChatTransport) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(text), nil
}

func (m *MockChatTransport) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(ctx, chatID, messageID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[messageID] = text
	return nil
}

func (m *MockChatTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(ctx, chatID, messageID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[messageID] = true
	return nil
}

func (m *MockChatTransport) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) (int, error) {
	if m.SendButtonsFunc != nil {
		return m.SendButtonsFunc(ctx, chatID, text, rows)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Buttons = append(m.Buttons, MockButtonCall{ChatID: chatID, Text: text, Rows: rows})
	return m.record(text), nil
}

func (m *MockChatTransport) SendDocument(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error {
	if m.SendDocumentFunc != nil {
		return m.SendDocumentFunc(ctx, chatID, name, r, caption)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs = append(m.Docs, MockDocument{Name: name, Caption: caption, Data: data})
	return nil
}

func (m *MockChatTransport) SendPhoto(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error {
	if m.SendPhotoFunc != nil {
		return m.SendPhotoFunc(ctx, chatID, name, r, caption)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Photos = append(m.Photos, name)
	return nil
}

func (m *MockChatTransport) SendChatAction(ctx context.Context, chatID int64, action adapter.ChatAction) error {
	if m.SendChatActionFunc != nil {
		return m.SendChatActionFunc(ctx, chatID, action)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockChatTransport) IsTransient(err error) bool {
	if m.IsTransientFunc != nil {
		return m.IsTransientFunc(err)
	}
	return false
}

// Texts returns the current text of every live message, in send order.
func (m *MockChatTransport) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, id := range m.order {
		if !m.deleted[id] {
			out = append(out, m.messages[id])
		}
	}
	return out
}

type MockPaymentGateway struct {
	CreatePaymentFunc func(ctx context.Context, amountRUB int64, description string, meta map[string]string) (string, string, error)
	QueryStatusFunc   func(ctx context.Context, paymentID string) (model.IntentStatus, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, amountRUB int64, description string, meta map[string]string) (string, string, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, amountRUB, description, meta)
	}
	return "pay-1", "https://pay.example/pay-1", nil
}

func (m *MockPaymentGateway) QueryStatus(ctx context.Context, paymentID string) (model.IntentStatus, error) {
	if m.QueryStatusFunc != nil {
		return m.QueryStatusFunc(ctx, paymentID)
	}
	return model.IntentStatusPending, nil
}

type MockCredentialGenerator struct {
	Dir string

	GenerateFunc      func(ctx context.Context, clientName string, durationDays int) error
	ArtifactPathFunc  func(clientName string) string
	ServiceStatusFunc func(ctx context.Context) (string, error)
}

var _ adapter.CredentialGenerator = (*MockCredentialGenerator)(nil)

func (m *MockCredentialGenerator) Generate(ctx context.Context, clientName string, durationDays int) error {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, clientName, durationDays)
	}
	return nil
}

func (m *MockCredentialGenerator) ArtifactPath(clientName string) string {
	if m.ArtifactPathFunc != nil {
		return m.ArtifactPathFunc(clientName)
	}
	return filepath.Join(m.Dir, clientName+".ovpn")
}

func (m *MockCredentialGenerator) ServiceStatus(ctx context.Context) (string, error) {
	if m.ServiceStatusFunc != nil {
		return m.ServiceStatusFunc(ctx)
	}
	return "Active: active (running)", nil
}
