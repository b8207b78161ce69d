package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rishtahub/rishta-backend/api/controllers"
	webhookcontrollers "github.com/rishtahub/rishta-backend/api/controllers/webhooks"
	"github.com/rishtahub/rishta-backend/api/middleware"
	"github.com/rishtahub/rishta-backend/internal/auth"
	"github.com/rishtahub/rishta-backend/internal/bookings"
	"github.com/rishtahub/rishta-backend/internal/listings"
	"github.com/rishtahub/rishta-backend/internal/moderation"
	"github.com/rishtahub/rishta-backend/internal/notifications"
	"github.com/rishtahub/rishta-backend/internal/onboarding"
	"github.com/rishtahub/rishta-backend/internal/payments"
	"github.com/rishtahub/rishta-backend/internal/photos"
	"github.com/rishtahub/rishta-backend/internal/plans"
	"github.com/rishtahub/rishta-backend/internal/reviews"
	"github.com/rishtahub/rishta-backend/internal/vendoradmin"
	stripewebhook "github.com/rishtahub/rishta-backend/internal/webhooks/stripe"
	"github.com/rishtahub/rishta-backend/pkg/auth/session"
	"github.com/rishtahub/rishta-backend/pkg/config"
	"github.com/rishtahub/rishta-backend/pkg/db"
	"github.com/rishtahub/rishta-backend/pkg/enums"
	"github.com/rishtahub/rishta-backend/pkg/logger"
	"github.com/rishtahub/rishta-backend/pkg/redis"
	"github.com/rishtahub/rishta-backend/pkg/stripe"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the HTTP surface needs. Grouping them beats a
// twenty-parameter constructor.
type Deps struct {
	Config              *config.Config
	Logger              *logger.Logger
	DB                  db.Pinger
	Redis               *redis.Client
	SessionManager      sessionManager
	AuthService         auth.Service
	RegisterService     auth.RegisterService
	AdminRegister       auth.AdminRegisterService
	PlansService        plans.Service
	OnboardingService   onboarding.Service
	PaymentsService     payments.Service
	VendorAdminService  vendoradmin.Service
	ListingsService     listings.Service
	BookingsService     bookings.Service
	ReviewsService      reviews.Service
	PhotosService       photos.Service
	ModerationService   moderation.Service
	NotificationService notifications.Service
	StripeClient        *stripe.Client
	StripeWebhook       *stripewebhook.Service
	StripeWebhookGuard  *stripewebhook.IdempotencyGuard
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(d.StripeWebhook, d.StripeClient, d.StripeWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.RegisterService, d.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(d.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(d.AdminRegister, d.AuthService, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
	})

	// Public catalog.
	r.Get("/api/v1/vendors/onboarding/plans", controllers.ListPlans(d.PlansService, logg))
	r.Get("/api/v1/services", controllers.SearchServices(d.ListingsService, logg))
	r.Get("/api/v1/vendors/{vendorId}/reviews", controllers.ListVendorReviews(d.ReviewsService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/vendors/onboarding", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleVendor), logg))
			r.Get("/status", controllers.OnboardingStatus(d.OnboardingService, logg))
			r.Post("/plans/select", controllers.OnboardingSelectPlan(d.OnboardingService, logg))
			r.Patch("/profile/step", controllers.OnboardingProfileStep(d.OnboardingService, logg))
			r.Post("/review/submit", controllers.OnboardingSubmit(d.OnboardingService, logg))
			r.Post("/payment/create-checkout", controllers.CreateCheckout(d.PaymentsService, logg))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleVendor), logg))
			r.Route("/services", func(r chi.Router) {
				r.Get("/", controllers.VendorListServices(d.ListingsService, logg))
				r.Post("/", controllers.VendorCreateService(d.ListingsService, logg))
				r.Patch("/{serviceId}", controllers.VendorUpdateService(d.ListingsService, logg))
				r.Delete("/{serviceId}", controllers.VendorDeleteService(d.ListingsService, logg))
			})
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", controllers.VendorListBookings(d.BookingsService, logg))
				r.Post("/{bookingId}/confirm", controllers.VendorConfirmBooking(d.BookingsService, logg))
				r.Post("/{bookingId}/cancel", controllers.VendorCancelBooking(d.BookingsService, logg))
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.ListMyBookings(d.BookingsService, logg))
			r.Post("/", controllers.CreateBooking(d.BookingsService, logg))
			r.Post("/{bookingId}/cancel", controllers.CancelMyBooking(d.BookingsService, logg))
			r.Post("/{bookingId}/review", controllers.CreateReview(d.ReviewsService, logg))
		})

		r.Route("/photos", func(r chi.Router) {
			r.Post("/", controllers.UploadPhoto(d.PhotosService, logg))
			r.Get("/{photoId}", controllers.DownloadPhoto(d.PhotosService, logg))
			r.Patch("/{photoId}/visibility", controllers.UpdatePhotoVisibility(d.PhotosService, logg))
			r.Delete("/{photoId}", controllers.DeletePhoto(d.PhotosService, logg))
			r.Post("/{photoId}/access-request", controllers.RequestPhotoAccess(d.PhotosService, logg))
			r.Post("/access-requests/{requestId}/grant", controllers.GrantPhotoAccess(d.PhotosService, logg))
			r.Post("/access-requests/{requestId}/deny", controllers.DenyPhotoAccess(d.PhotosService, logg))
		})
		r.Get("/users/{userId}/photos", controllers.ListUserPhotos(d.PhotosService, logg))

		r.Post("/reports", controllers.CreateReport(d.ModerationService, logg))
		r.Route("/blocks", func(r chi.Router) {
			r.Get("/", controllers.ListBlocks(d.ModerationService, logg))
			r.Post("/", controllers.CreateBlock(d.ModerationService, logg))
			r.Delete("/{userId}", controllers.DeleteBlock(d.ModerationService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.NotificationService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.NotificationService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.NotificationService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/pending", controllers.AdminVendorsPending(d.VendorAdminService, logg))
			r.Post("/{vendorId}/action", controllers.AdminVendorAction(d.VendorAdminService, logg))
			r.Put("/{vendorId}/approve", controllers.AdminVendorDecision(d.VendorAdminService, enums.VendorAdminActionApprove, logg))
			r.Put("/{vendorId}/reject", controllers.AdminVendorDecision(d.VendorAdminService, enums.VendorAdminActionReject, logg))
			r.Put("/{vendorId}/suspend", controllers.AdminVendorDecision(d.VendorAdminService, enums.VendorAdminActionSuspend, logg))
		})

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", controllers.AdminCreatePlan(d.PlansService, logg))
			r.Post("/{planId}/retire", controllers.AdminRetirePlan(d.PlansService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", controllers.AdminListReports(d.ModerationService, logg))
			r.Post("/{reportId}/action", controllers.AdminResolveReport(d.ModerationService, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/{reviewId}/hide", controllers.AdminHideReview(d.ReviewsService, logg))
			r.Post("/{reviewId}/unhide", controllers.AdminUnhideReview(d.ReviewsService, logg))
		})
	})

	return r
}
