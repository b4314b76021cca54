package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/dixis/dixis/config"
	"github.com/dixis/dixis/pkg/crypto"
	"github.com/dixis/dixis/pkg/email"
	"github.com/dixis/dixis/pkg/filter"
	"github.com/dixis/dixis/pkg/i18n"
	"github.com/dixis/dixis/pkg/ratelimit"
	"github.com/dixis/dixis/services"
	"github.com/dixis/dixis/ws"
)

// Predicates compiled for the storefront filter stay cached this long.
const filterCacheTTL = 10 * time.Minute

type Services struct {
	Auth          services.AuthService
	Upload        services.UploadService
	Notification  services.NotificationService
	Category      services.CategoryService
	Producer      services.ProducerService
	Business      services.BusinessService
	Product       services.ProductService
	Order         services.OrderService
	AdoptableItem services.AdoptableItemService
	Adoption      services.AdoptionService
	Review        services.ReviewService
	Question      services.QuestionService
	Shipping      services.ShippingService
	Subscription  services.SubscriptionService
	Setting       services.SettingService
	Dashboard     services.DashboardService
	Catalog       services.CatalogService
	Expiry        services.ExpiryJob

	filters *filter.Compiler
}

// Close stops background goroutines owned by services.
func (s *Services) Close() {
	s.Expiry.Stop()
	s.Shipping.Close()
	s.filters.Close()
}

type RateLimiters struct {
	Login *ratelimit.LoginRateLimiter
}

func (l *RateLimiters) Close() {
	l.Login.Close()
}

func initRateLimiters() *RateLimiters {
	return &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(5, 2*time.Minute),
	}
}

func initServices(db *sql.DB, repos *Repositories, hub *ws.Hub, cfg *config.Config, log *zap.Logger) (*Services, error) {
	localesFS, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("locales: %w", err)
	}
	catalog, err := i18n.Load(localesFS)
	if err != nil {
		return nil, err
	}

	box, err := crypto.NewBox(cfg.App.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
	}

	var mailer email.Sender
	if cfg.Email.Enabled() {
		mailer = email.NewResendSender(cfg.Email.APIKey, cfg.Email.From)
	} else {
		log.Info("email disabled, RESEND_API_KEY or RESEND_FROM not set")
		mailer = email.NewNopSender()
	}

	loc := cfg.App.Timezone
	notifier := services.NewNotificationService(repos.Notification, repos.User, catalog, mailer, hub, cfg.App.URL, log)
	uploads := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize, log)
	filters := filter.NewCompiler(filterCacheTTL)

	adoption := services.NewAdoptionService(db, repos.Adoption, hub, loc)
	subscription := services.NewSubscriptionService(db, repos.Subscription, repos.Producer, repos.Business, notifier, loc)

	svcs := &Services{
		Auth: services.NewAuthService(
			repos.User,
			repos.Session,
			cfg.JWT.Secret,
			cfg.JWT.AccessTokenExpiry,
			cfg.JWT.RefreshTokenExpiry,
		),
		Upload:        uploads,
		Notification:  notifier,
		Category:      services.NewCategoryService(repos.Category),
		Producer:      services.NewProducerService(repos.Producer, notifier),
		Business:      services.NewBusinessService(repos.Business, repos.Subscription, notifier),
		Product:       services.NewProductService(repos.Product, repos.Category, repos.Producer),
		Order:         services.NewOrderService(repos.Order, hub),
		AdoptableItem: services.NewAdoptableItemService(repos.AdoptableItem, repos.Producer, uploads),
		Adoption:      adoption,
		Review:        services.NewReviewService(repos.Review, hub),
		Question:      services.NewQuestionService(repos.Question, hub),
		Shipping: services.NewShippingService(db, repos.Shipping, services.ShippingOptions{
			DefaultZoneID:     cfg.Shipping.DefaultZoneID,
			VolumetricDivisor: cfg.Shipping.VolumetricDivisor,
			ExtraKgRate:       cfg.Shipping.ExtraKgRate,
			CODFee:            cfg.Shipping.CODFee,
		}, log.Named("shipping")),
		Subscription: subscription,
		Setting:      services.NewSettingService(db, repos.Setting, box, hub),
		Dashboard:    services.NewDashboardService(repos.Dashboard, loc),
		Catalog:      services.NewCatalogService(repos.Catalog, filters),
		Expiry:       services.NewExpiryJob(adoption, subscription, repos.Session, cfg.Jobs.ExpiryInterval, log),
		filters:      filters,
	}
	return svcs, nil
}
