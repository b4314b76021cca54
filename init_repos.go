package main

import (
	"database/sql"

	"github.com/dixis/dixis/repository"
)

// Repositories groups every repository so wiring functions take one argument.
type Repositories struct {
	User          repository.UserRepository
	Session       repository.SessionRepository
	Category      repository.CategoryRepository
	Producer      repository.ProducerRepository
	Business      repository.BusinessRepository
	Product       repository.ProductRepository
	Order         repository.OrderRepository
	AdoptableItem repository.AdoptableItemRepository
	Adoption      repository.AdoptionRepository
	Review        repository.ReviewRepository
	Question      repository.QuestionRepository
	Shipping      repository.ShippingRepository
	Subscription  repository.SubscriptionRepository
	Setting       repository.SettingRepository
	Notification  repository.NotificationRepository
	Dashboard     repository.DashboardRepository
	Catalog       repository.CatalogRepository
}

func initRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:          repository.NewSQLiteUserRepo(db),
		Session:       repository.NewSQLiteSessionRepo(db),
		Category:      repository.NewSQLiteCategoryRepo(db),
		Producer:      repository.NewSQLiteProducerRepo(db),
		Business:      repository.NewSQLiteBusinessRepo(db),
		Product:       repository.NewSQLiteProductRepo(db),
		Order:         repository.NewSQLiteOrderRepo(db),
		AdoptableItem: repository.NewSQLiteAdoptableItemRepo(db),
		Adoption:      repository.NewSQLiteAdoptionRepo(db),
		Review:        repository.NewSQLiteReviewRepo(db),
		Question:      repository.NewSQLiteQuestionRepo(db),
		Shipping:      repository.NewSQLiteShippingRepo(db),
		Subscription:  repository.NewSQLiteSubscriptionRepo(db),
		Setting:       repository.NewSQLiteSettingRepo(db),
		Notification:  repository.NewSQLiteNotificationRepo(db),
		Dashboard:     repository.NewSQLiteDashboardRepo(db),
		Catalog:       repository.NewSQLiteCatalogRepo(db),
	}
}
