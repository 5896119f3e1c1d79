package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/config"
	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/infra/i18n"
	"telegram-vpn-shop/internal/infra/metrics"
)

// Compile-time check
var _ DeliveryEngine = (*deliveryUC)(nil)

// DeliveryEngine presents localized text to a chat. Stream grows a
// single message by in-place edits; long texts fall back to plain
// chunked delivery. Every call yields exactly one logical message,
// under any failure path.
type DeliveryEngine interface {
	// Stream delivers the text stored under key with progressive
	// reveal, splitting on delimiter.
	Stream(ctx context.Context, chatID int64, lang, key, delimiter string) error
	// Notify sends one short localized message.
	Notify(ctx context.Context, chatID int64, lang, key string, args ...interface{}) error
}

type deliveryUC struct {
	transport adapter.ChatTransport
	locales   *i18n.Store

	revealThreshold int
	maxChunk        int
	retries         int
	backoff         time.Duration

	typingPause time.Duration
	editPause   time.Duration

	log *zerolog.Logger
}

func NewDeliveryEngine(transport adapter.ChatTransport, locales *i18n.Store, cfg config.DeliveryConfig, logger *zerolog.Logger) *deliveryUC {
	dlog := logger.With().Str("component", "DeliveryEngine").Logger()
	return &deliveryUC{
		transport:       transport,
		locales:         locales,
		revealThreshold: cfg.RevealThreshold,
		maxChunk:        cfg.MaxChunk,
		retries:         cfg.Retries,
		backoff:         cfg.Backoff,
		typingPause:     500 * time.Millisecond,
		editPause:       100 * time.Millisecond,
		log:             &dlog,
	}
}

// SetPace overrides the presentation pauses (tests).
func (d *deliveryUC) SetPace(typing, edit time.Duration) {
	d.typingPause = typing
	d.editPause = edit
}

func (d *deliveryUC) Notify(ctx context.Context, chatID int64, lang, key string, args ...interface{}) error {
	_, err := d.transport.SendMessage(ctx, chatID, d.locales.Bundle(lang).T(key, args...))
	return err
}

func (d *deliveryUC) Stream(ctx context.Context, chatID int64, lang, key, delimiter string) error {
	if err := d.transport.SendChatAction(ctx, chatID, adapter.ActionTyping); err != nil {
		d.log.Warn().Err(err).Int64("chat_id", chatID).Msg("chat action failed")
	}
	d.pause(ctx, d.typingPause)

	bundle := d.locales.Bundle(lang)
	text, err := bundle.Resolve(key)
	if err != nil {
		// Content fault: report once, never retry.
		metrics.IncDelivery("error_notice")
		if _, serr := d.transport.SendMessage(ctx, chatID, bundle.T("content_error")); serr != nil {
			d.log.Error().Err(serr).Int64("chat_id", chatID).Msg("content error notice failed")
		}
		return err
	}

	if len(text) > d.revealThreshold {
		if err := d.sendChunked(ctx, chatID, text); err != nil {
			return d.lastResort(ctx, chatID, bundle, err)
		}
		metrics.IncDelivery("chunked")
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < d.retries; attempt++ {
		err := d.reveal(ctx, chatID, text, delimiter)
		if err == nil {
			metrics.IncDelivery("reveal")
			return nil
		}
		lastErr = err
		if !d.transport.IsTransient(err) {
			break
		}
		d.log.Warn().Err(err).Int("attempt", attempt+1).Int64("chat_id", chatID).Msg("progressive reveal failed")
		if attempt < d.retries-1 {
			d.pause(ctx, d.backoff)
		}
	}

	// Every reveal attempt exhausted; degrade to plain chunks.
	if err := d.sendChunked(ctx, chatID, text); err != nil {
		return d.lastResort(ctx, chatID, bundle, lastErr)
	}
	metrics.IncDelivery("fallback")
	return nil
}

// reveal sends the first segment as a new message, then edit-appends
// every further segment. Transient edit failures are skipped so the
// reveal keeps going; a failed initial send aborts the attempt.
func (d *deliveryUC) reveal(ctx context.Context, chatID int64, text, delimiter string) error {
	segments := strings.Split(text, delimiter)

	cur := segments[0]
	rest := segments[1:]
	// A leading delimiter would produce an empty first message, which
	// the transport rejects; merge it into the next segment.
	if strings.TrimSpace(cur) == "" && len(rest) > 0 {
		cur = cur + delimiter + rest[0]
		rest = rest[1:]
	}

	msgID, err := d.transport.SendMessage(ctx, chatID, cur)
	if err != nil {
		return err
	}

	for _, seg := range rest {
		cur += delimiter + seg
		if err := d.transport.EditMessage(ctx, chatID, msgID, cur); err != nil {
			if d.transport.IsTransient(err) {
				continue
			}
			return err
		}
		d.pause(ctx, d.editPause)
	}
	return nil
}

func (d *deliveryUC) sendChunked(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitChunks(text, d.maxChunk) {
		if _, err := d.transport.SendMessage(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// lastResort guarantees the "never zero messages" contract with a
// generic localized notice.
func (d *deliveryUC) lastResort(ctx context.Context, chatID int64, bundle *i18n.Translator, cause error) error {
	metrics.IncDelivery("error_notice")
	if _, err := d.transport.SendMessage(ctx, chatID, bundle.T("generic_error")); err != nil {
		d.log.Error().Err(err).Int64("chat_id", chatID).Msg("error notice failed")
	}
	if cause == nil {
		cause = domain.ErrContent
	}
	return cause
}

func (d *deliveryUC) pause(ctx context.Context, dur time.Duration) {
	if dur <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(dur):
	}
}

// splitChunks cuts text into pieces of at most max bytes, preferring
// the last newline inside the limit, then the last space, then a hard
// cut. Break characters stay at the end of their chunk, so the
// concatenation of all chunks reproduces text exactly.
func splitChunks(text string, max int) []string {
	if max <= 0 || len(text) <= max {
		return []string{text}
	}
	var parts []string
	for len(text) > max {
		cut := strings.LastIndexByte(text[:max], '\n')
		if cut < 0 {
			cut = strings.LastIndexByte(text[:max], ' ')
		}
		if cut < 0 {
			// Hard cut: back up so the boundary never lands mid-rune.
			cut = max - 1
			for cut > 0 && !utf8.RuneStart(text[cut+1]) {
				cut--
			}
		}
		parts = append(parts, text[:cut+1])
		text = text[cut+1:]
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}
