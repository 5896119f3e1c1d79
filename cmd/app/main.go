package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"telegram-vpn-shop/internal/config"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/repository"
	"telegram-vpn-shop/internal/infra/admin"
	"telegram-vpn-shop/internal/infra/boltstore"
	"telegram-vpn-shop/internal/infra/i18n"
	"telegram-vpn-shop/internal/infra/links"
	"telegram-vpn-shop/internal/infra/logging"
	"telegram-vpn-shop/internal/infra/memstore"
	"telegram-vpn-shop/internal/infra/metrics"
	"telegram-vpn-shop/internal/infra/payment"
	"telegram-vpn-shop/internal/infra/redisstore"
	"telegram-vpn-shop/internal/infra/telegram"
	"telegram-vpn-shop/internal/infra/vpn"
	"telegram-vpn-shop/internal/infra/worker"
	"telegram-vpn-shop/internal/usecase"
)

// Overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (payments auto-succeed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Session store ----
	var sessions repository.SessionRepository
	if cfg.Redis.URL != "" {
		client, err := redisstore.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer client.Close()
		sessions = redisstore.NewSessionRepo(client, cfg.Redis.TTL)
	} else {
		logger.Info().Msg("no redis url configured, sessions are in-memory")
		sessions = memstore.NewSessionRepo()
	}

	// ---- Intent and marker store ----
	var intents repository.IntentRepository
	var markers repository.MarkerRepository
	if cfg.Storage.BoltPath != "" {
		db, err := boltstore.Open(cfg.Storage.BoltPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Storage.BoltPath).Msg("bolt")
		}
		defer db.Close()
		if intents, err = boltstore.NewIntentRepo(db); err != nil {
			logger.Fatal().Err(err).Msg("intent bucket")
		}
		if markers, err = boltstore.NewMarkerRepo(db); err != nil {
			logger.Fatal().Err(err).Msg("marker bucket")
		}
	} else {
		logger.Info().Msg("no bolt path configured, intents are in-memory")
		intents = memstore.NewIntentRepo()
		markers = memstore.NewMarkerRepo()
	}

	// ---- Content ----
	catalog := model.DefaultCatalog()
	locales, err := i18n.NewStore(i18n.LocalesFS, []string{"en", "ru"}, cfg.Content.DefaultLanguage)
	if err != nil {
		logger.Fatal().Err(err).Msg("locales")
	}
	linkCat, err := links.Load(cfg.Content.LinksPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Content.LinksPath).Msg("link catalog")
	}

	// ---- Adapters ----
	gateway, err := payment.NewYooKassaGateway(cfg.Payment.YooKassa.ShopID, cfg.Payment.YooKassa.SecretKey, cfg.Payment.YooKassa.ReturnURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("payment gateway")
	}
	generator := vpn.NewPiVPNGenerator(cfg.VPN.Binary, cfg.VPN.OvpnDir, cfg.VPN.GenTimeout, logger)
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	bot, err := telegram.NewRealBot(&cfg.Bot, nil, pool, locales, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	// ---- Use cases ----
	delivery := usecase.NewDeliveryEngine(bot, locales, cfg.Delivery, logger)
	fulfillment := usecase.NewFulfillmentPipeline(generator, bot, delivery, sessions, locales, logger)
	payments := usecase.NewPaymentUseCase(intents, catalog, gateway, fulfillment, delivery, cfg.Payment.IntentTTL, cfg.Runtime.Dev, logger)
	announce := usecase.NewAnnounceUseCase(markers, delivery, locales, logger)
	flow := usecase.NewFlowUseCase(sessions, catalog, payments, delivery, bot, generator, announce, linkCat, locales, logger)
	bot.SetFlow(flow)

	// ---- Admin endpoint ----
	adminSrv := admin.NewServer(cfg.Admin.Port, logger)
	go func() {
		if err := adminSrv.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("admin server stopped")
		}
	}()

	pool.Start(ctx)
	defer pool.Stop()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	}()

	logger.Info().Str("version", version).Msg("starting polling")
	if err := bot.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("polling stopped")
	}
}
