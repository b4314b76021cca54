package main

import (
	"github.com/dixis/dixis/config"
	"github.com/dixis/dixis/handlers"
	"github.com/dixis/dixis/ws"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Category      *handlers.CategoryHandler
	AdoptableItem *handlers.AdoptableItemHandler
	Adoption      *handlers.AdoptionHandler
	Producer      *handlers.ProducerHandler
	Business      *handlers.BusinessHandler
	Product       *handlers.ProductHandler
	Order         *handlers.OrderHandler
	Review        *handlers.ReviewHandler
	Question      *handlers.QuestionHandler
	Shipping      *handlers.ShippingHandler
	Subscription  *handlers.SubscriptionHandler
	Setting       *handlers.SettingHandler
	Dashboard     *handlers.DashboardHandler
	Catalog       *handlers.CatalogHandler
	WS            *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	loc := cfg.App.Timezone
	return &Handlers{
		Auth:          handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		Category:      handlers.NewCategoryHandler(svcs.Category),
		AdoptableItem: handlers.NewAdoptableItemHandler(svcs.AdoptableItem),
		Adoption:      handlers.NewAdoptionHandler(svcs.Adoption, loc),
		Producer:      handlers.NewProducerHandler(svcs.Producer, loc),
		Business:      handlers.NewBusinessHandler(svcs.Business),
		Product:       handlers.NewProductHandler(svcs.Product, loc),
		Order:         handlers.NewOrderHandler(svcs.Order, loc),
		Review:        handlers.NewReviewHandler(svcs.Review, loc),
		Question:      handlers.NewQuestionHandler(svcs.Question),
		Shipping:      handlers.NewShippingHandler(svcs.Shipping),
		Subscription:  handlers.NewSubscriptionHandler(svcs.Subscription),
		Setting:       handlers.NewSettingHandler(svcs.Setting),
		Dashboard:     handlers.NewDashboardHandler(svcs.Dashboard, loc),
		Catalog:       handlers.NewCatalogHandler(svcs.Catalog),
		WS:            ws.NewHandler(hub, svcs.Auth, cfg.App.AllowedOrigins),
	}
}
