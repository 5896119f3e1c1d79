package usecase

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/domain/ports/repository"
	"telegram-vpn-shop/internal/infra/i18n"
	"telegram-vpn-shop/internal/infra/metrics"
)

// Compile-time check
var _ FulfillmentPipeline = (*fulfillmentUC)(nil)

// FulfillmentPipeline generates a credential file and delivers it to
// the user. Each step is independently fail-safe; the artifact never
// outlives the delivery attempt.
type FulfillmentPipeline interface {
	Fulfill(ctx context.Context, chatID, userID int64, durationDays int, planLabel, lang string) error
}

type fulfillmentUC struct {
	generator adapter.CredentialGenerator
	transport adapter.ChatTransport
	delivery  DeliveryEngine
	sessions  repository.SessionRepository
	locales   *i18n.Store
	log       *zerolog.Logger
}

func NewFulfillmentPipeline(
	generator adapter.CredentialGenerator,
	transport adapter.ChatTransport,
	delivery DeliveryEngine,
	sessions repository.SessionRepository,
	locales *i18n.Store,
	logger *zerolog.Logger,
) *fulfillmentUC {
	fulLog := logger.With().Str("component", "FulfillmentUC").Logger()
	return &fulfillmentUC{
		generator: generator,
		transport: transport,
		delivery:  delivery,
		sessions:  sessions,
		locales:   locales,
		log:       &fulLog,
	}
}

// ClientName derives the deterministic generator client id for a user.
func ClientName(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

func (u *fulfillmentUC) Fulfill(ctx context.Context, chatID, userID int64, durationDays int, planLabel, lang string) error {
	// Step 1: best-effort progress notice.
	if err := u.transport.SendChatAction(ctx, chatID, adapter.ActionUploadDocument); err != nil {
		u.log.Warn().Err(err).Int64("chat_id", chatID).Msg("chat action failed")
	}
	if err := u.delivery.Notify(ctx, chatID, lang, "generating"); err != nil {
		u.log.Warn().Err(err).Int64("chat_id", chatID).Msg("progress notice failed")
	}

	// Step 2: invoke the external generator.
	client := ClientName(userID)
	if err := u.generator.Generate(ctx, client, durationDays); err != nil {
		metrics.IncFulfillment("generation_error")
		if nerr := u.delivery.Notify(ctx, chatID, lang, "generation_error"); nerr != nil {
			u.log.Error().Err(nerr).Int64("chat_id", chatID).Msg("generation error notice failed")
		}
		// No artifact exists; nothing to clean up.
		return err
	}

	artifact := u.generator.ArtifactPath(client)
	defer u.cleanup(ctx, chatID, userID, artifact)

	// Step 3: the generator claimed success; the file must exist.
	f, err := os.Open(artifact)
	if err != nil {
		metrics.IncFulfillment("artifact_missing")
		if nerr := u.delivery.Notify(ctx, chatID, lang, "artifact_missing"); nerr != nil {
			u.log.Error().Err(nerr).Int64("chat_id", chatID).Msg("missing artifact notice failed")
		}
		return fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, artifact)
	}
	defer f.Close()

	// Step 4: deliver the credential with its validity caption.
	caption := u.locales.Bundle(lang).T("file_caption", planLabel)
	if err := u.transport.SendDocument(ctx, chatID, client+".ovpn", f, caption); err != nil {
		metrics.IncFulfillment("delivery_error")
		if nerr := u.delivery.Notify(ctx, chatID, lang, "delivery_error", err.Error()); nerr != nil {
			u.log.Error().Err(nerr).Int64("chat_id", chatID).Msg("delivery error notice failed")
		}
		return err
	}
	if err := u.delivery.Notify(ctx, chatID, lang, "subscription_active", planLabel); err != nil {
		u.log.Warn().Err(err).Int64("chat_id", chatID).Msg("activation notice failed")
	}
	metrics.IncFulfillment("delivered")
	u.log.Info().Int64("user_id", userID).Str("plan", planLabel).Int("days", durationDays).Msg("credential delivered")
	return nil
}

// cleanup runs every teardown step independently; failures are logged,
// never surfaced to the user.
func (u *fulfillmentUC) cleanup(ctx context.Context, chatID, userID int64, artifact string) {
	if sess, err := u.sessions.Find(ctx, userID); err == nil {
		if sess.MenuMessageID != 0 {
			if derr := u.transport.DeleteMessage(ctx, chatID, sess.MenuMessageID); derr != nil {
				u.log.Warn().Err(derr).Int64("chat_id", chatID).Msg("selection message delete failed")
			}
		}
		sess.Reset()
		sess.State = model.FlowCompleted
		if serr := u.sessions.Save(ctx, sess); serr != nil {
			u.log.Warn().Err(serr).Int64("user_id", userID).Msg("session cleanup failed")
		}
	}

	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		u.log.Warn().Err(err).Str("artifact", artifact).Msg("artifact delete failed")
	}
}
