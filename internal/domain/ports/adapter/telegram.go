package adapter

import (
	"context"
	"io"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// ChatAction is a transient presence indicator shown before a reply.
type ChatAction string

const (
	ActionTyping         ChatAction = "typing"
	ActionUploadDocument ChatAction = "upload_document"
	ActionUploadPhoto    ChatAction = "upload_photo"
)

// ChatTransport is the hex port for the messaging platform.
type ChatTransport interface {
	// SendMessage returns the id of the created message so callers can
	// edit or delete it later.
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) (int, error)
	SendDocument(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error
	SendPhoto(ctx context.Context, chatID int64, name string, r io.Reader, caption string) error
	SendChatAction(ctx context.Context, chatID int64, action ChatAction) error

	// IsTransient reports whether err looks like a recoverable
	// network/timeout fault worth retrying.
	IsTransient(err error) bool
}
