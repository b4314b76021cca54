package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg/email"
	"github.com/dixis/dixis/pkg/i18n"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

const emailTimeout = 10 * time.Second

// Notice describes one user-facing notification. Key selects the
// "<key>.title" and "<key>.message" catalog entries.
type Notice struct {
	UserID int64
	Type   string
	Key    string
	Params map[string]string
	Data   models.JSONMap
	// Event, when set, is broadcast to connected admins.
	Event *ws.Event
}

// NotificationService fans a Notice out to the notifications table, email
// and the admin live feed. Every channel is best-effort: failures are logged
// and never returned, so a committed admin action is never reported as failed.
type NotificationService interface {
	Notify(ctx context.Context, n Notice)
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	catalog  *i18n.Catalog
	mailer   email.Sender
	hub      ws.EventPublisher
	appURL   string
	log      *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	catalog *i18n.Catalog,
	mailer email.Sender,
	hub ws.EventPublisher,
	appURL string,
	log *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:     repo,
		userRepo: userRepo,
		catalog:  catalog,
		mailer:   mailer,
		hub:      hub,
		appURL:   appURL,
		log:      log.Named("notification"),
	}
}

func (s *notificationService) Notify(ctx context.Context, n Notice) {
	if n.Event != nil {
		s.hub.BroadcastToAll(*n.Event)
	}
	if n.UserID == 0 {
		return
	}

	user, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		s.log.Warn("failed to load notification recipient", zap.Int64("user_id", n.UserID), zap.Error(err))
		return
	}

	loc := s.catalog.Localizer(user.Language)
	title := loc.TWithParams(n.Key+".title", n.Params)
	message := loc.TWithParams(n.Key+".message", n.Params)

	row := &models.Notification{
		UserID:  n.UserID,
		Type:    n.Type,
		Title:   title,
		Message: message,
		Data:    n.Data,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.log.Warn("failed to store notification",
			zap.Int64("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}

	if user.Email == "" {
		return
	}

	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
	defer cancel()

	msg := email.Message{
		To:        user.Email,
		Subject:   title,
		Title:     title,
		Body:      message,
		LinkURL:   s.appURL,
		LinkLabel: loc.T("email.open_dashboard"),
	}
	if err := s.mailer.Send(mailCtx, msg); err != nil {
		s.log.Warn("failed to send notification email",
			zap.Int64("user_id", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
}
