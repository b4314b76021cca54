package services

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg/email"
	"github.com/dixis/dixis/pkg/i18n"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func loadCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	sub, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	require.NoError(t, err)
	catalog, err := i18n.Load(sub)
	require.NoError(t, err)
	return catalog
}

func TestNotifyStoresLocalizedRowAndEmails(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewSQLiteNotificationRepo(db.Conn)
	hub := newRecordingHub()
	mailer := &fakeMailer{}
	svc := NewNotificationService(repo, repository.NewSQLiteUserRepo(db.Conn), loadCatalog(t), mailer, hub, "https://dixis.gr", zap.NewNop())
	ctx := context.Background()

	greek := insertUser(t, db.Conn, "Maria", "maria@example.gr", "producer")
	english := insertUser(t, db.Conn, "John", "john@example.com", "producer")
	_, err := db.Conn.Exec(`UPDATE users SET language = 'en' WHERE id = ?`, english)
	require.NoError(t, err)

	svc.Notify(ctx, Notice{
		UserID: english,
		Type:   models.NotificationAccountRejected,
		Key:    "producer.rejected",
		Params: map[string]string{"name": "Olive Grove", "reason": "missing tax id"},
		Data:   models.JSONMap{"reason": "missing tax id"},
		Event:  &ws.Event{Op: ws.OpProducerRejected},
	})
	svc.Notify(ctx, Notice{
		UserID: greek,
		Type:   models.NotificationAccountVerified,
		Key:    "producer.verified",
		Params: map[string]string{"name": "Ελαιώνας"},
	})

	rows, err := repo.ListByUser(ctx, english, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationAccountRejected, rows[0].Type)
	assert.Equal(t, "Your application was rejected", rows[0].Title)
	assert.Contains(t, rows[0].Message, `"Olive Grove"`)
	assert.Contains(t, rows[0].Message, "missing tax id")
	assert.Equal(t, "missing tax id", rows[0].Data["reason"])
	assert.Nil(t, rows[0].ReadAt)

	rows, err = repo.ListByUser(ctx, greek, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ο λογαριασμός σας επαληθεύτηκε", rows[0].Title)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "john@example.com", mailer.sent[0].To)
	assert.Equal(t, "Your application was rejected", mailer.sent[0].Subject)
	assert.Equal(t, "https://dixis.gr", mailer.sent[0].LinkURL)
	assert.Equal(t, "maria@example.gr", mailer.sent[1].To)

	assert.Equal(t, []string{ws.OpProducerRejected}, hub.ops())
}

func TestNotifyFailuresAreLoggedOnly(t *testing.T) {
	db := dbtest.New(t)
	core, logs := observer.New(zapcore.WarnLevel)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	hub := newRecordingHub()
	svc := NewNotificationService(
		repository.NewSQLiteNotificationRepo(db.Conn),
		repository.NewSQLiteUserRepo(db.Conn),
		loadCatalog(t), mailer, hub, "", zap.New(core),
	)
	ctx := context.Background()

	svc.Notify(ctx, Notice{UserID: 999, Type: models.NotificationAccountVerified, Key: "producer.verified"})
	assert.Equal(t, 1, logs.FilterMessage("failed to load notification recipient").Len())
	assert.Empty(t, mailer.sent)

	userID := insertUser(t, db.Conn, "Nikos", "nikos@example.gr", "consumer")
	svc.Notify(ctx, Notice{UserID: userID, Type: models.NotificationSubscriptionCancelled, Key: "subscription.cancelled"})
	assert.Equal(t, 1, logs.FilterMessage("failed to send notification email").Len())
	assert.Len(t, mailer.sent, 1)

	// Admin-only events need no recipient.
	svc.Notify(ctx, Notice{Event: &ws.Event{Op: ws.OpReviewModerated}})
	assert.Equal(t, []string{ws.OpReviewModerated}, hub.ops())
	assert.Len(t, mailer.sent, 1)
}
