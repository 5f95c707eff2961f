package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/coupon-saver/internal/api/http"
	"github.com/spec-kit/coupon-saver/internal/api/http/handlers"
	"github.com/spec-kit/coupon-saver/internal/auth"
	"github.com/spec-kit/coupon-saver/internal/bot"
	"github.com/spec-kit/coupon-saver/internal/config"
	"github.com/spec-kit/coupon-saver/internal/dialog"
	"github.com/spec-kit/coupon-saver/internal/events"
	"github.com/spec-kit/coupon-saver/internal/observability"
	"github.com/spec-kit/coupon-saver/internal/persistence"
	"github.com/spec-kit/coupon-saver/internal/repository"
	"github.com/spec-kit/coupon-saver/internal/service"
	"github.com/spec-kit/coupon-saver/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	couponRepo := repository.NewCouponRepository(pg.PoolHandle())

	couponService := service.NewCouponService(service.CouponDependencies{
		CouponRepo: couponRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	claimService := service.NewClaimService(service.ClaimDependencies{
		CouponRepo: couponRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		DailyLimit: cfg.Claim.DailyLimit,
	})

	api, err := bot.NewAPI(cfg.Bot, logger)
	if err != nil {
		logger.Fatal("failed to init telegram bot", zap.Error(err))
	}

	membershipService := service.NewMembershipService(service.MembershipDependencies{
		Checker:     bot.NewMemberChecker(api, cfg.Bot.RequiredChannel),
		Cache:       redis,
		CacheTTL:    cfg.Bot.MembershipCacheTTL(),
		Channel:     cfg.Bot.RequiredChannel,
		Logger:      logger,
		IsCacheMiss: persistence.IsMiss,
	})

	dialogManager := dialog.NewManager(couponService, logger)

	couponBot := bot.New(bot.Dependencies{
		API:        api,
		Config:     cfg.Bot,
		Logger:     logger,
		Metrics:    metrics,
		Dialogs:    dialogManager,
		Claims:     claimService,
		Coupons:    couponService,
		Membership: membershipService,
		ListLimit:  cfg.Claim.ListLimit,
	})

	announcementService := service.NewAnnouncementService(dispatcher, couponBot, logger, cfg.Bot.AnnounceEnabled)
	worker.StartAnnouncementWorker(announcementService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(cfg.Auth, tokens),
		Coupons:        handlers.NewCouponsHandler(couponService, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	botDone := make(chan struct{})
	go func() {
		couponBot.Run(ctx)
		close(botDone)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	_ = app.Shutdown()
	// Run drains in-flight updates before returning
	<-botDone
}
