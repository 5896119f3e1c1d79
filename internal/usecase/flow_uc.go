package usecase

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/adapter"
	"telegram-vpn-shop/internal/domain/ports/repository"
	"telegram-vpn-shop/internal/infra/i18n"
	"telegram-vpn-shop/internal/infra/links"
	"telegram-vpn-shop/internal/infra/qr"
)

// ActionKind is the closed set of inputs the flow understands. The
// transport adapter translates raw commands, button texts and callback
// payloads into exactly one of these; dispatch is a switch, never a
// name lookup.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionStart
	ActionMenu
	ActionHelp
	ActionAbout
	ActionStatus
	ActionLimitations
	ActionPrivacy
	ActionTutorial
	ActionTerms
	ActionSupport
	ActionWhatsNew
	ActionBuy
	ActionGetApp
	ActionCancel
	ActionProduct      // Payload: product id
	ActionApp          // Payload: application name
	ActionOS           // Payload: operating system name
	ActionCheckPayment // Payload: intent id
)

// Input is one user action entering the state machine.
type Input struct {
	Kind    ActionKind
	Payload string
	UserID  int64
	ChatID  int64
	Lang    string
}

// Compile-time check
var _ FlowUseCase = (*flowUC)(nil)

// FlowUseCase tracks each user's progress through the purchase and
// download flows. Unknown or out-of-state input is benign: the menu is
// re-rendered and stored selections stay untouched.
type FlowUseCase interface {
	Handle(ctx context.Context, in Input) error
}

// osChoices the download flow offers, in render order.
var osChoices = []string{"Windows", "macOS", "Linux", "Android", "iOS"}

type flowUC struct {
	sessions  repository.SessionRepository
	catalog   *model.Catalog
	payments  PaymentUseCase
	delivery  DeliveryEngine
	transport adapter.ChatTransport
	generator adapter.CredentialGenerator
	announce  AnnounceUseCase
	linkCat   *links.Catalog
	locales   *i18n.Store
	log       *zerolog.Logger
}

func NewFlowUseCase(
	sessions repository.SessionRepository,
	catalog *model.Catalog,
	payments PaymentUseCase,
	delivery DeliveryEngine,
	transport adapter.ChatTransport,
	generator adapter.CredentialGenerator,
	announce AnnounceUseCase,
	linkCat *links.Catalog,
	locales *i18n.Store,
	logger *zerolog.Logger,
) *flowUC {
	flowLog := logger.With().Str("component", "FlowUC").Logger()
	return &flowUC{
		sessions:  sessions,
		catalog:   catalog,
		payments:  payments,
		delivery:  delivery,
		transport: transport,
		generator: generator,
		announce:  announce,
		linkCat:   linkCat,
		locales:   locales,
		log:       &flowLog,
	}
}

func (u *flowUC) Handle(ctx context.Context, in Input) error {
	sess := u.session(ctx, in)

	switch in.Kind {
	case ActionStart:
		if err := u.delivery.Stream(ctx, in.ChatID, in.Lang, "start_message", "."); err != nil {
			u.log.Warn().Err(err).Int64("chat_id", in.ChatID).Msg("start message failed")
		}
		return u.renderMenu(ctx, in, sess)

	case ActionMenu:
		return u.renderMenu(ctx, in, sess)

	case ActionHelp:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "help_message", "/")
	case ActionAbout:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "about_message", ".")
	case ActionLimitations:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "limitations_message", "• ")
	case ActionPrivacy:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "privacy_message", "• ")
	case ActionTutorial:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "tutorial_message", ". ")
	case ActionTerms:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "terms_message", "•")
	case ActionSupport:
		return u.delivery.Stream(ctx, in.ChatID, in.Lang, "support_message", ".")

	case ActionStatus:
		line, err := u.generator.ServiceStatus(ctx)
		if err != nil {
			u.log.Warn().Err(err).Msg("service status failed")
			return u.delivery.Notify(ctx, in.ChatID, in.Lang, "generic_error")
		}
		_, err = u.transport.SendMessage(ctx, in.ChatID, line)
		return err

	case ActionWhatsNew:
		return u.announce.WhatsNew(ctx, in.ChatID, in.Lang)

	case ActionBuy:
		return u.startPurchase(ctx, in, sess)

	case ActionProduct:
		return u.chooseProduct(ctx, in, sess)

	case ActionCheckPayment:
		return u.checkPayment(ctx, in)

	case ActionGetApp:
		return u.startDownload(ctx, in, sess)

	case ActionApp:
		return u.chooseApp(ctx, in, sess)

	case ActionOS:
		return u.chooseOS(ctx, in, sess)

	case ActionCancel:
		// Cancel always succeeds, from any state.
		sess.Cancel()
		if err := u.sessions.Save(ctx, sess); err != nil {
			u.log.Warn().Err(err).Int64("user_id", in.UserID).Msg("session save failed")
		}
		return u.delivery.Notify(ctx, in.ChatID, in.Lang, "cancel_done")

	default:
		if err := u.delivery.Notify(ctx, in.ChatID, in.Lang, "unknown_command"); err != nil {
			return err
		}
		return u.renderMenu(ctx, in, sess)
	}
}

// session loads or creates the caller's session. A load failure is
// answered with a fresh session rather than an error; losing a
// half-done flow beats refusing input.
func (u *flowUC) session(ctx context.Context, in Input) *model.Session {
	sess, err := u.sessions.Find(ctx, in.UserID)
	if err != nil {
		return model.NewSession(in.UserID, in.ChatID)
	}
	sess.ChatID = in.ChatID
	return sess
}

func (u *flowUC) renderMenu(ctx context.Context, in Input, sess *model.Session) error {
	b := u.locales.Bundle(in.Lang)
	rows := [][]adapter.InlineButton{
		{{Text: b.T("menu_btn_help"), Data: "menu:help"}, {Text: b.T("menu_btn_about"), Data: "menu:about"}},
		{{Text: b.T("menu_btn_buy"), Data: "menu:buy"}},
		{{Text: b.T("menu_btn_getapp"), Data: "menu:getapp"}, {Text: b.T("menu_btn_privacy"), Data: "menu:privacy"}},
		{{Text: b.T("menu_btn_terms"), Data: "menu:terms"}, {Text: b.T("menu_btn_menu"), Data: "menu:menu"}},
	}
	_, err := u.transport.SendButtons(ctx, in.ChatID, b.T("menu_title"), rows)
	return err
}

// startPurchase enters (or re-enters) the purchase flow. A fresh entry
// supersedes any stored state.
func (u *flowUC) startPurchase(ctx context.Context, in Input, sess *model.Session) error {
	b := u.locales.Bundle(in.Lang)
	rows := make([][]adapter.InlineButton, 0, len(u.catalog.List()))
	for _, p := range u.catalog.List() {
		rows = append(rows, []adapter.InlineButton{
			{Text: b.T("tariff_btn", p.Name, p.PriceRUB), Data: "product:" + p.ID},
		})
	}
	msgID, err := u.transport.SendButtons(ctx, in.ChatID, b.T("choose_tariff"), rows)
	if err != nil {
		return err
	}

	sess.Reset()
	sess.State = model.FlowAwaitingProductChoice
	sess.MenuMessageID = msgID
	return u.sessions.Save(ctx, sess)
}

func (u *flowUC) chooseProduct(ctx context.Context, in Input, sess *model.Session) error {
	if sess.State != model.FlowAwaitingProductChoice {
		return u.renderMenu(ctx, in, sess)
	}
	product, err := u.catalog.Find(in.Payload)
	if err != nil {
		// Benign: report, keep state and stored selections untouched.
		return u.delivery.Notify(ctx, in.ChatID, in.Lang, "invalid_product")
	}

	payURL, intentID, err := u.payments.CreateIntent(ctx, product.ID, in.UserID, in.ChatID)
	if err != nil {
		u.log.Error().Err(err).Str("product_id", product.ID).Msg("intent creation failed")
		return u.delivery.Notify(ctx, in.ChatID, in.Lang, "payment_create_error")
	}

	sess.ProductID = product.ID
	sess.IntentID = intentID
	if err := u.sessions.Save(ctx, sess); err != nil {
		u.log.Warn().Err(err).Int64("user_id", in.UserID).Msg("session save failed")
	}

	b := u.locales.Bundle(in.Lang)
	rows := [][]adapter.InlineButton{
		{{Text: b.T("pay_button"), URL: payURL}},
		{{Text: b.T("check_button"), Data: "check:" + intentID}},
	}
	prompt := b.T("payment_prompt", product.Name, product.PriceRUB, product.Description)
	if _, err := u.transport.SendButtons(ctx, in.ChatID, prompt, rows); err != nil {
		return err
	}

	// The QR mirror of the checkout link is a convenience, not a step.
	if img, qerr := qr.Render(payURL); qerr == nil {
		if perr := u.transport.SendPhoto(ctx, in.ChatID, "payment.png", img, product.Name); perr != nil {
			u.log.Warn().Err(perr).Int64("chat_id", in.ChatID).Msg("payment qr send failed")
		}
	} else {
		u.log.Warn().Err(qerr).Msg("payment qr render failed")
	}
	return nil
}

func (u *flowUC) checkPayment(ctx context.Context, in Input) error {
	switch u.payments.PollStatus(ctx, in.Payload) {
	case model.IntentStatusSucceeded:
		if !u.payments.ConfirmAndFulfill(ctx, in.Payload, in.Lang) {
			return u.delivery.Notify(ctx, in.ChatID, in.Lang, "payment_not_found")
		}
		return nil
	case model.IntentStatusPending:
		return u.delivery.Notify(ctx, in.ChatID, in.Lang, "payment_pending")
	default:
		return u.delivery.Notify(ctx, in.ChatID, in.Lang, "payment_not_found")
	}
}

func (u *flowUC) sendAppKeyboard(ctx context.Context, in Input) (int, error) {
	b := u.locales.Bundle(in.Lang)
	apps := u.linkCat.Apps()
	sort.Strings(apps)
	row := make([]adapter.InlineButton, 0, len(apps))
	for _, app := range apps {
		row = append(row, adapter.InlineButton{Text: app, Data: "app:" + app})
	}
	return u.transport.SendButtons(ctx, in.ChatID, b.T("choose_app"), [][]adapter.InlineButton{row})
}

func (u *flowUC) startDownload(ctx context.Context, in Input, sess *model.Session) error {
	msgID, err := u.sendAppKeyboard(ctx, in)
	if err != nil {
		return err
	}

	sess.Reset()
	sess.State = model.FlowAwaitingAppChoice
	sess.MenuMessageID = msgID
	return u.sessions.Save(ctx, sess)
}

func (u *flowUC) chooseApp(ctx context.Context, in Input, sess *model.Session) error {
	if sess.State != model.FlowAwaitingAppChoice {
		return u.renderMenu(ctx, in, sess)
	}
	if !u.linkCat.Has(in.Payload) {
		// A forged or stale callback names an app the catalog does not
		// carry; re-offer the choices and leave the session untouched.
		u.log.Warn().Str("app", in.Payload).Int64("chat_id", in.ChatID).Msg("unknown app choice")
		msgID, err := u.sendAppKeyboard(ctx, in)
		if err != nil {
			return err
		}
		sess.MenuMessageID = msgID
		return u.sessions.Save(ctx, sess)
	}

	b := u.locales.Bundle(in.Lang)
	row := make([]adapter.InlineButton, 0, len(osChoices))
	for _, osName := range osChoices {
		row = append(row, adapter.InlineButton{Text: osName, Data: "os:" + osName})
	}
	msgID, err := u.transport.SendButtons(ctx, in.ChatID, b.T("choose_os"), [][]adapter.InlineButton{row})
	if err != nil {
		return err
	}
	if sess.MenuMessageID != 0 {
		if derr := u.transport.DeleteMessage(ctx, in.ChatID, sess.MenuMessageID); derr != nil {
			u.log.Warn().Err(derr).Int64("chat_id", in.ChatID).Msg("stale keyboard delete failed")
		}
	}

	sess.SelectedApp = in.Payload
	sess.State = model.FlowAwaitingOsChoice
	sess.MenuMessageID = msgID
	return u.sessions.Save(ctx, sess)
}

func (u *flowUC) chooseOS(ctx context.Context, in Input, sess *model.Session) error {
	if sess.State != model.FlowAwaitingOsChoice {
		return u.renderMenu(ctx, in, sess)
	}
	sess.SelectedOS = in.Payload

	url, err := u.linkCat.Resolve(sess.SelectedApp, sess.SelectedOS)
	if err != nil {
		if cerr := u.delivery.Notify(ctx, in.ChatID, in.Lang, "content_error"); cerr != nil {
			u.log.Error().Err(cerr).Int64("chat_id", in.ChatID).Msg("content error notice failed")
		}
		return err
	}
	if err := u.delivery.Notify(ctx, in.ChatID, in.Lang, "download_link", url); err != nil {
		return err
	}

	sess.Reset()
	sess.State = model.FlowCompleted
	return u.sessions.Save(ctx, sess)
}
