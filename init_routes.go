package main

import (
	"net/http"
	"strings"

	"github.com/dixis/dixis/middleware"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/services"
)

// initRoutes registers every endpoint on mux. Literal segments such as
// "/pending" and "/stats" are registered next to "{id}" routes; ServeMux
// picks the more specific pattern.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
	uploadDir string,
) {
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	admin := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(middleware.RequireAdmin(handler))
	}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"dixis"}`))
	})

	// Auth
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))

	// Storefront
	mux.HandleFunc("GET /api/products", h.Catalog.List)
	mux.HandleFunc("GET /api/products/{slug}", h.Catalog.Get)
	mux.HandleFunc("GET /api/search/suggestions", h.Catalog.Suggestions)
	mux.HandleFunc("GET /api/categories", h.Category.Tree)
	mux.HandleFunc("POST /api/shipping/quote", h.Shipping.Quote)

	// Dashboard
	mux.Handle("GET /api/admin/dashboard/stats", admin(h.Dashboard.Stats))
	mux.Handle("GET /api/admin/dashboard/pending", admin(h.Dashboard.Pending))

	// Categories
	mux.Handle("GET /api/admin/categories", admin(h.Category.List))
	mux.Handle("POST /api/admin/categories", admin(h.Category.Create))
	mux.Handle("GET /api/admin/categories/{id}", admin(h.Category.Get))
	mux.Handle("PUT /api/admin/categories/{id}", admin(h.Category.Update))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(h.Category.Delete))

	// Adoptable items. POST on {id} accepts multipart updates, which
	// browsers cannot send with PUT.
	mux.Handle("GET /api/admin/adoptable-items", admin(h.AdoptableItem.List))
	mux.Handle("POST /api/admin/adoptable-items", admin(h.AdoptableItem.Create))
	mux.Handle("GET /api/admin/adoptable-items/{id}", admin(h.AdoptableItem.Get))
	mux.Handle("PUT /api/admin/adoptable-items/{id}", admin(h.AdoptableItem.Update))
	mux.Handle("POST /api/admin/adoptable-items/{id}", admin(h.AdoptableItem.Update))
	mux.Handle("DELETE /api/admin/adoptable-items/{id}", admin(h.AdoptableItem.Delete))

	// Adoptions
	mux.Handle("GET /api/admin/adoptions", admin(h.Adoption.List))
	mux.Handle("GET /api/admin/adoptions/stats", admin(h.Adoption.Stats))
	mux.Handle("GET /api/admin/adoptions/{id}", admin(h.Adoption.Get))
	mux.Handle("PUT /api/admin/adoptions/{id}", admin(h.Adoption.Update))
	mux.Handle("DELETE /api/admin/adoptions/{id}", admin(h.Adoption.Delete))
	mux.Handle("POST /api/admin/adoptions/{id}/cancel", admin(h.Adoption.Cancel))
	mux.Handle("POST /api/admin/adoptions/{id}/renew", admin(h.Adoption.Renew))

	// Producers
	mux.Handle("GET /api/admin/producers", admin(h.Producer.List))
	mux.Handle("GET /api/admin/producers/pending", admin(h.Producer.Pending))
	mux.Handle("GET /api/admin/producers/{id}", admin(h.Producer.Get))
	mux.Handle("PUT /api/admin/producers/{id}", admin(h.Producer.Update))
	mux.Handle("POST /api/admin/producers/{id}/verify", admin(h.Producer.Verify))
	mux.Handle("POST /api/admin/producers/{id}/reject", admin(h.Producer.Reject))
	mux.Handle("GET /api/admin/producers/{id}/stats", admin(h.Producer.Stats))

	// Businesses
	mux.Handle("GET /api/admin/businesses", admin(h.Business.List))
	mux.Handle("GET /api/admin/businesses/pending", admin(h.Business.Pending))
	mux.Handle("GET /api/admin/businesses/{id}", admin(h.Business.Get))
	mux.Handle("PUT /api/admin/businesses/{id}", admin(h.Business.Update))
	mux.Handle("POST /api/admin/businesses/{id}/verify", admin(h.Business.Verify))
	mux.Handle("POST /api/admin/businesses/{id}/reject", admin(h.Business.Reject))
	mux.Handle("GET /api/admin/businesses/{id}/stats", admin(h.Business.Stats))

	// Products
	mux.Handle("GET /api/admin/products", admin(h.Product.List))
	mux.Handle("POST /api/admin/products", admin(h.Product.Create))
	mux.Handle("GET /api/admin/products/{id}", admin(h.Product.Get))
	mux.Handle("PUT /api/admin/products/{id}", admin(h.Product.Update))
	mux.Handle("DELETE /api/admin/products/{id}", admin(h.Product.Delete))
	mux.Handle("POST /api/admin/products/{id}/approve", admin(h.Product.Approve))
	mux.Handle("POST /api/admin/products/{id}/reject", admin(h.Product.Reject))

	// Orders
	mux.Handle("GET /api/admin/orders", admin(h.Order.List))
	mux.Handle("GET /api/admin/orders/{id}", admin(h.Order.Get))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(h.Order.UpdateStatus))

	// Reviews
	mux.Handle("GET /api/admin/reviews", admin(h.Review.List))
	mux.Handle("GET /api/admin/reviews/pending", admin(h.Review.Pending))
	mux.Handle("GET /api/admin/reviews/{id}", admin(h.Review.Get))
	mux.Handle("PUT /api/admin/reviews/{id}", admin(h.Review.Update))
	mux.Handle("DELETE /api/admin/reviews/{id}", admin(h.Review.Delete))
	mux.Handle("POST /api/admin/reviews/{id}/approve", admin(h.Review.Approve))
	mux.Handle("POST /api/admin/reviews/{id}/reject", admin(h.Review.Reject))

	// Questions
	mux.Handle("GET /api/admin/questions", admin(h.Question.List))
	mux.Handle("GET /api/admin/questions/unanswered", admin(h.Question.Unanswered))
	mux.Handle("GET /api/admin/questions/{id}", admin(h.Question.Get))
	mux.Handle("PUT /api/admin/questions/{id}", admin(h.Question.Update))
	mux.Handle("DELETE /api/admin/questions/{id}", admin(h.Question.Delete))

	// Shipping
	mux.Handle("GET /api/admin/shipping/zones", admin(h.Shipping.ListZones))
	mux.Handle("POST /api/admin/shipping/zones", admin(h.Shipping.CreateZone))
	mux.Handle("GET /api/admin/shipping/zones/{id}", admin(h.Shipping.GetZone))
	mux.Handle("PUT /api/admin/shipping/zones/{id}", admin(h.Shipping.UpdateZone))
	mux.Handle("DELETE /api/admin/shipping/zones/{id}", admin(h.Shipping.DeleteZone))

	mux.Handle("GET /api/admin/shipping/postal-codes", admin(h.Shipping.ListPostalCodes))
	mux.Handle("POST /api/admin/shipping/postal-codes", admin(h.Shipping.CreatePostalCode))
	mux.Handle("POST /api/admin/shipping/postal-codes/import", admin(h.Shipping.ImportPostalCodes))
	mux.Handle("PUT /api/admin/shipping/postal-codes/{id}", admin(h.Shipping.UpdatePostalCode))
	mux.Handle("DELETE /api/admin/shipping/postal-codes/{id}", admin(h.Shipping.DeletePostalCode))

	mux.Handle("GET /api/admin/shipping/weight-tiers", admin(h.Shipping.ListTiers))
	mux.Handle("POST /api/admin/shipping/weight-tiers", admin(h.Shipping.CreateTier))
	mux.Handle("GET /api/admin/shipping/weight-tiers/{id}", admin(h.Shipping.GetTier))
	mux.Handle("PUT /api/admin/shipping/weight-tiers/{id}", admin(h.Shipping.UpdateTier))
	mux.Handle("DELETE /api/admin/shipping/weight-tiers/{id}", admin(h.Shipping.DeleteTier))

	mux.Handle("GET /api/admin/shipping/delivery-methods", admin(h.Shipping.ListMethods))
	mux.Handle("POST /api/admin/shipping/delivery-methods", admin(h.Shipping.CreateMethod))
	mux.Handle("GET /api/admin/shipping/delivery-methods/{id}", admin(h.Shipping.GetMethod))
	mux.Handle("PUT /api/admin/shipping/delivery-methods/{id}", admin(h.Shipping.UpdateMethod))
	mux.Handle("DELETE /api/admin/shipping/delivery-methods/{id}", admin(h.Shipping.DeleteMethod))

	mux.Handle("GET /api/admin/shipping/rates", admin(h.Shipping.ListRates))
	mux.Handle("POST /api/admin/shipping/rates", admin(h.Shipping.CreateRate))
	mux.Handle("POST /api/admin/shipping/rates/import", admin(h.Shipping.ImportRates))
	mux.Handle("GET /api/admin/shipping/rates/{id}", admin(h.Shipping.GetRate))
	mux.Handle("PUT /api/admin/shipping/rates/{id}", admin(h.Shipping.UpdateRate))
	mux.Handle("DELETE /api/admin/shipping/rates/{id}", admin(h.Shipping.DeleteRate))

	// Subscriptions
	mux.Handle("GET /api/admin/subscriptions/plans", admin(h.Subscription.ListPlans))
	mux.Handle("POST /api/admin/subscriptions/plans", admin(h.Subscription.CreatePlan))
	mux.Handle("GET /api/admin/subscriptions/plans/{id}", admin(h.Subscription.GetPlan))
	mux.Handle("PUT /api/admin/subscriptions/plans/{id}", admin(h.Subscription.UpdatePlan))
	mux.Handle("DELETE /api/admin/subscriptions/plans/{id}", admin(h.Subscription.DeletePlan))
	mux.Handle("GET /api/admin/subscriptions", admin(h.Subscription.List))
	mux.Handle("POST /api/admin/subscriptions", admin(h.Subscription.Create))
	mux.Handle("GET /api/admin/subscriptions/stats", admin(h.Subscription.Stats))
	mux.Handle("GET /api/admin/subscriptions/{id}", admin(h.Subscription.Get))
	mux.Handle("PUT /api/admin/subscriptions/{id}", admin(h.Subscription.Update))
	mux.Handle("POST /api/admin/subscriptions/{id}/cancel", admin(h.Subscription.Cancel))

	// Settings
	mux.Handle("GET /api/admin/settings", admin(h.Setting.Get))
	mux.Handle("PUT /api/admin/settings", admin(h.Setting.Update))

	// Uploaded images, e.g. /uploads/items/<uuid>.jpg. FileServer already
	// refuses ".." segments.
	files := http.FileServer(http.Dir(uploadDir))
	mux.Handle("GET "+services.UploadPrefix, http.StripPrefix(strings.TrimSuffix(services.UploadPrefix, "/"), files))

	// Browsers cannot set headers on a websocket handshake; the handler
	// authenticates ?token= itself.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
