// Package telegram adapts the Bot API to the chat transport port and
// feeds polled updates through the worker pool into the flow.
package telegram

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/config"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/infra/i18n"
	"telegram-vpn-shop/internal/infra/logging"
	"telegram-vpn-shop/internal/infra/metrics"
	"telegram-vpn-shop/internal/infra/worker"
	"telegram-vpn-shop/internal/usecase"
)

const updateTimeout = 30 * time.Second

var _ adapter.ChatTransport = (*RealBot)(nil)

// RealBot implements the chat transport over tgbotapi and owns the
// long-polling loop.
type RealBot struct {
	bot     *tgbotapi.BotAPI
	flow    usecase.FlowUseCase
	pool    *worker.Pool
	locales *i18n.Store
	log     *zerolog.Logger

	cancelPolling context.CancelFunc
}

func NewRealBot(cfg *config.BotConfig, flow usecase.FlowUseCase, pool *worker.Pool, locales *i18n.Store, logger *zerolog.Logger) (*RealBot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	botLog := logger.With().Str("component", "TelegramBot").Logger()
	botLog.Info().Str("username", bot.Self.UserName).Msg("authorized")
	return &RealBot{bot: bot, flow: flow, pool: pool, locales: locales, log: &botLog}, nil
}

// SetFlow wires the flow after construction; the transport and the
// flow depend on each other, so one side binds late.
func (r *RealBot) SetFlow(flow usecase.FlowUseCase) { r.flow = flow }

// StartPolling polls Telegram for updates and fans them out through
// the worker pool. It blocks until ctx is canceled.
func (r *RealBot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return ctx.Err()
		case up := <-updates:
			update := up
			if err := r.pool.Submit(func(taskCtx context.Context) error {
				return r.handleUpdate(taskCtx, update)
			}); err != nil {
				r.log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("update dropped")
			}
		}
	}
}

// StopPolling stops the polling loop gracefully.
func (r *RealBot) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	in, kind, ok := r.parseUpdate(update)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()
	ctx = logging.WithTraceID(ctx, ulid.Make().String())
	ctx = logging.WithTgID(ctx, in.UserID)
	ctx = logging.WithChatID(ctx, in.ChatID)

	start := time.Now()
	defer func() {
		metrics.ObserveUpdateLatency(kind, float64(time.Since(start).Milliseconds()))
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Int64("tg_id", in.UserID).Msg("update handler panicked")
			text := r.locales.Bundle(in.Lang).T("generic_error")
			if _, err := r.SendMessage(ctx, in.ChatID, text); err != nil {
				r.log.Error().Err(err).Int64("chat_id", in.ChatID).Msg("panic notice failed")
			}
		}
	}()

	if update.CallbackQuery != nil {
		// Stop the client-side spinner before doing any work.
		if _, err := r.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			r.log.Warn().Err(err).Msg("callback answer failed")
		}
	}

	return r.flow.Handle(ctx, in)
}

// parseUpdate maps a raw update onto a flow input. Updates without an
// actionable payload (edits, channel posts, joins) are skipped.
func (r *RealBot) parseUpdate(update tgbotapi.Update) (usecase.Input, string, bool) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil || cq.From == nil {
			return usecase.Input{}, "", false
		}
		kind, payload := parseCallback(cq.Data)
		return usecase.Input{
			Kind:    kind,
			Payload: payload,
			UserID:  cq.From.ID,
			ChatID:  cq.Message.Chat.ID,
			Lang:    cq.From.LanguageCode,
		}, "callback", true

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return usecase.Input{}, "", false
		}
		kind := usecase.ActionUnknown
		if msg.IsCommand() {
			kind = parseCommand(msg.Command())
		}
		return usecase.Input{
			Kind:   kind,
			UserID: msg.From.ID,
			ChatID: msg.Chat.ID,
			Lang:   msg.From.LanguageCode,
		}, "message", true
	}
	return usecase.Input{}, "", false
}

func (r *RealBot) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	sent, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (r *RealBot) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := r.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (r *RealBot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := r.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (r *RealBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) (int, error) {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				line = append(line, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				line = append(line, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		keyboard = append(keyboard, line)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	sent, err := r.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (r *RealBot) SendDocument(ctx context.Context, chatID int64, name string, reader io.Reader, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: name, Reader: reader})
	doc.Caption = caption
	_, err := r.bot.Send(doc)
	return err
}

func (r *RealBot) SendPhoto(ctx context.Context, chatID int64, name string, reader io.Reader, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileReader{Name: name, Reader: reader})
	photo.Caption = caption
	_, err := r.bot.Send(photo)
	return err
}

func (r *RealBot) SendChatAction(ctx context.Context, chatID int64, action adapter.ChatAction) error {
	_, err := r.bot.Request(tgbotapi.NewChatAction(chatID, string(action)))
	return err
}

// IsTransient classifies rate limits, server-side errors and network
// faults as retryable; everything else (bad request, blocked bot) is
// permanent.
func (r *RealBot) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return tgErr.Code == 429 || tgErr.Code >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
