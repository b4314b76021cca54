package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notices))
	for i, x := range n.notices {
		out[i] = x.Type
	}
	return out
}

func insertBusiness(t *testing.T, db *sql.DB, name string) (businessID, userID int64) {
	t.Helper()
	userID = insertUser(t, db, name, slugEmail(name), "business_user")
	res, err := db.Exec(`INSERT INTO businesses (user_id, name) VALUES (?, ?)`, userID, name)
	require.NoError(t, err)
	businessID, err = res.LastInsertId()
	require.NoError(t, err)
	return businessID, userID
}

type subscriptionFixture struct {
	svc      *subscriptionService
	notifier *recordingNotifier
	db       *sql.DB
	now      time.Time
}

func newSubscriptionFixture(t *testing.T) subscriptionFixture {
	t.Helper()
	db := dbtest.New(t)
	notifier := &recordingNotifier{}
	svc := NewSubscriptionService(
		db.Conn,
		repository.NewSQLiteSubscriptionRepo(db.Conn),
		repository.NewSQLiteProducerRepo(db.Conn),
		repository.NewSQLiteBusinessRepo(db.Conn),
		notifier,
		time.UTC,
	).(*subscriptionService)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return subscriptionFixture{svc: svc, notifier: notifier, db: db.Conn, now: now}
}

func (f subscriptionFixture) plan(t *testing.T, name, target string, price float64) *models.SubscriptionPlan {
	t.Helper()
	p, err := f.svc.CreatePlan(context.Background(), &models.PlanInput{
		Name:           ptr(name),
		TargetType:     ptr(target),
		Price:          ptr(price),
		BillingCycle:   ptr("monthly"),
		DurationMonths: ptr(3),
		Features:       &models.StringList{"priority support"},
	})
	require.NoError(t, err)
	return p
}

func TestSubscriptionPlanValidation(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePlan(ctx, &models.PlanInput{
		Name:           ptr("  "),
		TargetType:     ptr("consumer"),
		Price:          ptr(-1.0),
		BillingCycle:   ptr("weekly"),
		DurationMonths: ptr(0),
		CommissionRate: ptr(120.0),
		Features:       &models.StringList{"ok", " "},
	})
	fields := validationFields(t, err)
	for _, k := range []string{"name", "target_type", "price", "billing_cycle", "duration_months", "commission_rate", "features.1"} {
		assert.Contains(t, fields, k)
	}

	p := f.plan(t, "Basic", models.SubscriberBusiness, 19)
	assert.True(t, p.IsActive)
	assert.Equal(t, models.StringList{"priority support"}, p.Features)

	updated, err := f.svc.UpdatePlan(ctx, p.ID, &models.PlanInput{Price: ptr(25.0), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Basic", updated.Name)

	plans, err := f.svc.ListPlans(ctx, models.PlanFilter{TargetType: models.SubscriberProducer})
	require.NoError(t, err)
	assert.NotNil(t, plans)
	assert.Empty(t, plans)

	_, err = f.svc.ListPlans(ctx, models.PlanFilter{TargetType: "consumer"})
	assert.Contains(t, validationFields(t, err), "target_type")
}

func TestSubscriptionCreateReplacesCurrent(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	businessID, _ := insertBusiness(t, f.db, "Taverna Sofia")
	basic := f.plan(t, "Basic", models.SubscriberBusiness, 19)
	pro := f.plan(t, "Pro", models.SubscriberBusiness, 49)
	producerPlan := f.plan(t, "Grower", models.SubscriberProducer, 10)

	_, err := f.svc.Create(ctx, &models.CreateSubscriptionRequest{
		SubscribableType: models.SubscriberBusiness, SubscribableID: businessID, PlanID: producerPlan.ID,
	})
	assert.Contains(t, validationFields(t, err), "plan_id")

	first, err := f.svc.Create(ctx, &models.CreateSubscriptionRequest{
		SubscribableType: models.SubscriberBusiness, SubscribableID: businessID, PlanID: basic.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, first.Status)
	assert.False(t, first.AutoRenew)
	assert.Equal(t, "Taverna Sofia", first.SubscriberName)
	require.NotNil(t, first.EndDate)
	assert.True(t, f.now.AddDate(0, 3, 0).Equal(*first.EndDate))

	second, err := f.svc.Create(ctx, &models.CreateSubscriptionRequest{
		SubscribableType: models.SubscriberBusiness, SubscribableID: businessID, PlanID: pro.ID,
		AutoRenew: ptr(true), EndDate: ptr("2025-06-01"),
	})
	require.NoError(t, err)
	assert.True(t, second.AutoRenew)
	assert.Equal(t, "Pro", second.Plan.Name)

	replaced, err := f.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, replaced.Status)
	require.NotNil(t, replaced.CancellationReason)
	assert.Equal(t, "replaced by admin", *replaced.CancellationReason)

	assert.Equal(t, []string{models.NotificationSubscriptionCreated, models.NotificationSubscriptionCreated}, f.notifier.types())

	_, err = f.svc.Create(ctx, &models.CreateSubscriptionRequest{
		SubscribableType: models.SubscriberBusiness, SubscribableID: businessID, PlanID: pro.ID,
		EndDate: ptr("2024-01-01"),
	})
	assert.Contains(t, validationFields(t, err), "end_date")

	_, err = f.svc.Create(ctx, &models.CreateSubscriptionRequest{
		SubscribableType: models.SubscriberBusiness, SubscribableID: 999, PlanID: pro.ID,
	})
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeletePlan(ctx, pro.ID), pkg.ErrUnprocessable)
	require.NoError(t, f.svc.DeletePlan(ctx, producerPlan.ID))

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 49.0, stats.TotalRevenue)
	assert.Equal(t, []models.Counted{{Key: "active", Count: 1}, {Key: "cancelled", Count: 1}}, stats.StatusCounts)
	assert.Equal(t, []models.Counted{{Key: "business", Count: 2}}, stats.TypeCounts)
}

func TestSubscriptionCancelAndExpire(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	producerID := insertProducer(t, f.db, "Olive Hill")
	plan := f.plan(t, "Grower", models.SubscriberProducer, 10)
	sub, err := f.svc.Create(ctx, &models.CreateSubscriptionRequest{
		SubscribableType: models.SubscriberProducer, SubscribableID: producerID, PlanID: plan.ID,
		AutoRenew: ptr(true),
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, sub.ID, &models.CancelSubscriptionRequest{CancellationReason: ptr("closing season")})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, cancelled.Status)
	assert.False(t, cancelled.AutoRenew)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, f.now.Equal(*cancelled.CancelledAt))

	_, err = f.svc.Cancel(ctx, sub.ID, &models.CancelSubscriptionRequest{})
	assert.ErrorIs(t, err, pkg.ErrUnprocessable)
	assert.Equal(t, []string{models.NotificationSubscriptionCreated, models.NotificationSubscriptionCancelled}, f.notifier.types())
	assert.Equal(t, "closing season", f.notifier.notices[1].Params["reason"])

	// Reactivate with a past end date and no auto renew, then sweep.
	_, err = f.svc.Update(ctx, sub.ID, &models.UpdateSubscriptionRequest{
		Status: ptr(models.SubscriptionActive), EndDate: models.Some("2024-06-10"),
	})
	require.NoError(t, err)
	f.svc.now = func() time.Time { return f.now.AddDate(0, 0, 10) }

	n, err := f.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	expired, err := f.svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, expired.Status)

	_, err = f.svc.Update(ctx, sub.ID, &models.UpdateSubscriptionRequest{EndDate: models.Some("2024-05-01")})
	assert.Contains(t, validationFields(t, err), "end_date")

	_, err = f.svc.Update(ctx, sub.ID, &models.UpdateSubscriptionRequest{Status: ptr("paused")})
	assert.Contains(t, validationFields(t, err), "status")
}
