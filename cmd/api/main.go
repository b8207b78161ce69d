package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rishtahub/rishta-backend/api/routes"
	"github.com/rishtahub/rishta-backend/internal/auth"
	"github.com/rishtahub/rishta-backend/internal/bookings"
	"github.com/rishtahub/rishta-backend/internal/email"
	"github.com/rishtahub/rishta-backend/internal/listings"
	"github.com/rishtahub/rishta-backend/internal/moderation"
	"github.com/rishtahub/rishta-backend/internal/notifications"
	"github.com/rishtahub/rishta-backend/internal/onboarding"
	"github.com/rishtahub/rishta-backend/internal/payments"
	"github.com/rishtahub/rishta-backend/internal/photos"
	"github.com/rishtahub/rishta-backend/internal/plans"
	"github.com/rishtahub/rishta-backend/internal/reviews"
	"github.com/rishtahub/rishta-backend/internal/subscriptions"
	"github.com/rishtahub/rishta-backend/internal/users"
	"github.com/rishtahub/rishta-backend/internal/vendoradmin"
	stripewebhook "github.com/rishtahub/rishta-backend/internal/webhooks/stripe"
	"github.com/rishtahub/rishta-backend/pkg/auth/session"
	"github.com/rishtahub/rishta-backend/pkg/config"
	"github.com/rishtahub/rishta-backend/pkg/db"
	"github.com/rishtahub/rishta-backend/pkg/events"
	"github.com/rishtahub/rishta-backend/pkg/logger"
	"github.com/rishtahub/rishta-backend/pkg/migrate"
	"github.com/rishtahub/rishta-backend/pkg/redis"
	"github.com/rishtahub/rishta-backend/pkg/storage"
	"github.com/rishtahub/rishta-backend/pkg/stripe"
)

const webhookIdempotencyTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	bus := events.NewBus(logg)

	usersRepo := users.NewRepository(gormDB)
	profilesRepo := onboarding.NewRepository(gormDB)
	plansRepo := plans.NewRepository(gormDB)
	listingsRepo := listings.NewRepository(gormDB)
	bookingsRepo := bookings.NewRepository(gormDB)
	moderationRepo := moderation.NewRepository(gormDB)
	photosRepo := photos.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	adminRegister, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin register service", err)
		os.Exit(1)
	}

	plansService, err := plans.NewService(plansRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create plans service", err)
		os.Exit(1)
	}

	onboardingService, err := onboarding.NewService(profilesRepo, plansService)
	if err != nil {
		logg.Error(context.Background(), "failed to create onboarding service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:              subscriptions.NewRepository(gormDB),
		PlansRepo:         plansRepo,
		TransactionRunner: dbClient,
		Bus:               bus,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	gateway, err := payments.NewStripeGateway(stripeClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:              paymentsRepo,
		ProfilesRepo:      profilesRepo,
		PlansRepo:         plansRepo,
		Gateway:           gateway,
		Subscriptions:     subscriptionsService,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	vendorAdminService, err := vendoradmin.NewService(vendoradmin.ServiceParams{
		Repo:          profilesRepo,
		Lister:        vendoradmin.NewRepository(gormDB),
		Bus:           bus,
		Payments:      paymentsRepo,
		Subscriptions: subscriptionsService,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor admin service", err)
		os.Exit(1)
	}

	moderationService, err := moderation.NewService(moderation.ServiceParams{
		Repo:     moderationRepo,
		Users:    usersRepo,
		Profiles: profilesRepo,
		Vendors:  vendorAdminService,
		Bus:      bus,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create moderation service", err)
		os.Exit(1)
	}

	listingsService, err := listings.NewService(listings.ServiceParams{
		Repo:          listingsRepo,
		Profiles:      profilesRepo,
		Subscriptions: subscriptionsService,
		Plans:         plansRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	bookingsService, err := bookings.NewService(bookings.ServiceParams{
		Repo:     bookingsRepo,
		Services: listingsRepo,
		Profiles: profilesRepo,
		Blocks:   moderationRepo,
		Bus:      bus,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.NewRepository(gormDB), bookingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	objectStore, err := storage.New(cfg.Uploads, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open upload store", err)
		os.Exit(1)
	}

	photosService, err := photos.NewService(photos.ServiceParams{
		Repo:        photosRepo,
		Store:       objectStore,
		Blocks:      moderationRepo,
		Connections: bookingsRepo,
		Bus:         bus,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create photos service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	mailer, err := email.NewSMTPProvider(cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail provider", err)
		os.Exit(1)
	}

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Repo:     notificationsRepo,
		Users:    usersRepo,
		Profiles: profilesRepo,
		Mailer:   mailer,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}
	dispatcher.Register(bus)

	stripeWebhook, err := stripewebhook.NewService(paymentsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookIdempotencyTTL, "stripe")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:              cfg,
			Logger:              logg,
			DB:                  dbClient,
			Redis:               redisClient,
			SessionManager:      sessionManager,
			AuthService:         authService,
			RegisterService:     registerService,
			AdminRegister:       adminRegister,
			PlansService:        plansService,
			OnboardingService:   onboardingService,
			PaymentsService:     paymentsService,
			VendorAdminService:  vendorAdminService,
			ListingsService:     listingsService,
			BookingsService:     bookingsService,
			ReviewsService:      reviewsService,
			PhotosService:       photosService,
			ModerationService:   moderationService,
			NotificationService: notificationsService,
			StripeClient:        stripeClient,
			StripeWebhook:       stripeWebhook,
			StripeWebhookGuard:  webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
