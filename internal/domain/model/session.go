package model

import "time"

// FlowState names a user's position in the purchase/download flow.
type FlowState string

const (
	FlowIdle                  FlowState = "idle"
	FlowAwaitingProductChoice FlowState = "awaiting_product_choice"
	FlowAwaitingAppChoice     FlowState = "awaiting_app_choice"
	FlowAwaitingOsChoice      FlowState = "awaiting_os_choice"
	FlowCompleted             FlowState = "completed"
	FlowCancelled             FlowState = "cancelled"
)

// Terminal reports whether no further transition is expected.
func (s FlowState) Terminal() bool {
	return s == FlowCompleted || s == FlowCancelled
}

// Session is the per-user conversational state. It is keyed uniquely by
// Telegram user id, so a fresh flow entry supersedes any prior one.
type Session struct {
	UserID int64     `json:"user_id"`
	ChatID int64     `json:"chat_id"`
	State  FlowState `json:"state"`

	ProductID   string `json:"product_id,omitempty"`
	SelectedApp string `json:"selected_app,omitempty"`
	SelectedOS  string `json:"selected_os,omitempty"`
	IntentID    string `json:"intent_id,omitempty"`

	// Message carrying the last rendered selection keyboard; deleted
	// during fulfillment cleanup.
	MenuMessageID int `json:"menu_message_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(userID, chatID int64) *Session {
	return &Session{UserID: userID, ChatID: chatID, State: FlowIdle, UpdatedAt: time.Now()}
}

// Reset clears all stored choices and returns the session to Idle.
func (s *Session) Reset() {
	s.State = FlowIdle
	s.ProductID = ""
	s.SelectedApp = ""
	s.SelectedOS = ""
	s.IntentID = ""
	s.MenuMessageID = 0
	s.UpdatedAt = time.Now()
}

// Cancel moves the session to the Cancelled terminal state and drops
// every stored selection. Always succeeds, from any state.
func (s *Session) Cancel() {
	s.Reset()
	s.State = FlowCancelled
}
