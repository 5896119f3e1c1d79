package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/ports/repository"
	"telegram-vpn-shop/internal/infra/i18n"
)

var _ AnnounceUseCase = (*announceUC)(nil)

// AnnounceUseCase serves the changelog. Each chat only sees entries it
// has not been shown before; a chat that is fully caught up gets a
// "nothing new" notice instead.
type AnnounceUseCase interface {
	WhatsNew(ctx context.Context, chatID int64, lang string) error
}

type announceUC struct {
	markers  repository.MarkerRepository
	delivery DeliveryEngine
	locales  *i18n.Store
	log      *zerolog.Logger
}

func NewAnnounceUseCase(markers repository.MarkerRepository, delivery DeliveryEngine, locales *i18n.Store, logger *zerolog.Logger) *announceUC {
	ucLog := logger.With().Str("component", "AnnounceUC").Logger()
	return &announceUC{markers: markers, delivery: delivery, locales: locales, log: &ucLog}
}

func (u *announceUC) WhatsNew(ctx context.Context, chatID int64, lang string) error {
	full, err := u.locales.Bundle(lang).Resolve("all_updates")
	if err != nil {
		if nerr := u.delivery.Notify(ctx, chatID, lang, "content_error"); nerr != nil {
			u.log.Error().Err(nerr).Int64("chat_id", chatID).Msg("content error notice failed")
		}
		return domain.ErrContent
	}
	entries := splitEntries(full)

	seen, err := u.markers.Seen(ctx, chatID)
	if err != nil {
		u.log.Warn().Err(err).Int64("chat_id", chatID).Msg("marker read failed")
		seen = 0
	}
	if seen >= len(entries) {
		return u.delivery.Notify(ctx, chatID, lang, "whatsnew_none")
	}

	// A chat that has never seen the changelog gets it whole; returning
	// chats only get the entries added since their last visit.
	if seen == 0 {
		err = u.delivery.Stream(ctx, chatID, lang, "all_updates", "\n\n")
	} else {
		fresh := strings.Join(entries[seen:], "\n\n")
		err = u.delivery.Notify(ctx, chatID, lang, "whatsnew_since", fresh)
	}
	if err != nil {
		return err
	}
	// The marker only advances after a successful send, so a failed
	// delivery is retried in full next time.
	if err := u.markers.MarkSeen(ctx, chatID, len(entries)); err != nil {
		u.log.Warn().Err(err).Int64("chat_id", chatID).Msg("marker write failed")
	}
	return nil
}

// splitEntries breaks the changelog into entries on blank lines.
func splitEntries(text string) []string {
	parts := strings.Split(text, "\n\n")
	entries := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			entries = append(entries, p)
		}
	}
	return entries
}
