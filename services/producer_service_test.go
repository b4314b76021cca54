package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

var firstPage = pkg.PageParams{Page: 1, PerPage: 15}

func TestProducerVerifyAndReject(t *testing.T) {
	db := dbtest.New(t)
	notifier := &recordingNotifier{}
	svc := NewProducerService(repository.NewSQLiteProducerRepo(db.Conn), notifier).(*producerService)
	at := time.Date(2024, 2, 10, 11, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }
	ctx := context.Background()

	id := insertProducer(t, db.Conn, "Lesvos Olives")

	_, err := svc.Reject(ctx, id, &models.RejectRequest{Reason: ""})
	assert.Contains(t, validationFields(t, err), "reason")

	p, err := svc.Reject(ctx, id, &models.RejectRequest{Reason: "tax document unreadable"})
	require.NoError(t, err)
	assert.False(t, p.Verified)
	require.NotNil(t, p.RejectionReason)
	assert.Equal(t, "tax document unreadable", *p.RejectionReason)
	require.NotNil(t, p.RejectionDate)
	assert.True(t, at.Equal(*p.RejectionDate))

	p, err = svc.Verify(ctx, id)
	require.NoError(t, err)
	assert.True(t, p.Verified)
	assert.Nil(t, p.RejectionReason)
	assert.Nil(t, p.RejectionDate)
	require.NotNil(t, p.VerificationDate)

	require.Len(t, notifier.notices, 2)
	rejected, verified := notifier.notices[0], notifier.notices[1]
	assert.Equal(t, models.NotificationAccountRejected, rejected.Type)
	assert.Equal(t, p.UserID, rejected.UserID)
	assert.Equal(t, "tax document unreadable", rejected.Params["reason"])
	assert.Equal(t, ws.OpProducerRejected, rejected.Event.Op)
	assert.Equal(t, "producer.verified", verified.Key)
	assert.Equal(t, ws.OpProducerVerified, verified.Event.Op)

	_, err = svc.Verify(ctx, 404)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.Len(t, notifier.notices, 2)
}

func TestProducerUpdateAndListing(t *testing.T) {
	db := dbtest.New(t)
	svc := NewProducerService(repository.NewSQLiteProducerRepo(db.Conn), &recordingNotifier{}).(*producerService)
	svc.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	ctx := context.Background()

	a := insertProducer(t, db.Conn, "Chios Mastic")
	b := insertProducer(t, db.Conn, "Zagori Cheese")

	_, err := svc.Update(ctx, a, &models.UpdateProducerRequest{
		TaxID:       ptr("EL123456789"),
		Region:      models.Some("Βόρειο Αιγαίο"),
		SocialMedia: models.Some(models.JSONMap{"instagram": "@chiosmastic"}),
		IsFeatured:  ptr(true),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, b, &models.UpdateProducerRequest{TaxID: ptr(" EL123456789 ")})
	assert.Equal(t, pkg.ValidationErrors{"tax_id": "has already been taken"}, err)

	updated, err := svc.Update(ctx, b, &models.UpdateProducerRequest{
		Region:  models.Some("Ήπειρος"),
		Website: models.Some("not a url"),
	})
	assert.Contains(t, validationFields(t, err), "website")
	assert.Nil(t, updated)

	updated, err = svc.Update(ctx, a, &models.UpdateProducerRequest{Region: models.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Region)
	assert.Equal(t, "@chiosmastic", updated.SocialMedia["instagram"])
	assert.True(t, updated.IsFeatured)

	_, err = svc.Update(ctx, b, &models.UpdateProducerRequest{Region: models.Some("Ήπειρος")})
	require.NoError(t, err)

	page, err := svc.List(ctx, models.ProducerFilter{
		Status: "all",
		Sort:   models.SortSpec{Column: "p.business_name"},
		Page:   firstPage,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Chios Mastic", page.Data[0].BusinessName)
	assert.Equal(t, []string{"Ήπειρος"}, page.Regions)

	pending, err := svc.Pending(ctx, models.ProducerFilter{Sort: models.SortSpec{Column: "p.created_at"}, Page: firstPage})
	require.NoError(t, err)
	require.Len(t, pending.Data, 2)
	for _, p := range pending.Data {
		assert.False(t, p.HasAllDocuments)
		assert.GreaterOrEqual(t, p.DaysPending, 2)
	}

	_, err = svc.Stats(ctx, 999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	stats, err := svc.Stats(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, stats.ProductCount)
	assert.NotNil(t, stats.RecentOrders)
}

func TestBusinessModeration(t *testing.T) {
	db := dbtest.New(t)
	notifier := &recordingNotifier{}
	svc := NewBusinessService(
		repository.NewSQLiteBusinessRepo(db.Conn),
		repository.NewSQLiteSubscriptionRepo(db.Conn),
		notifier,
	)
	ctx := context.Background()

	first, _ := insertBusiness(t, db.Conn, "Hotel Aegli")
	second, secondUser := insertBusiness(t, db.Conn, "Estiatorio Mavro")

	_, err := svc.Update(ctx, first, &models.UpdateBusinessRequest{
		Email:        ptr("orders@aegli.gr"),
		BusinessType: ptr("hotel"),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, second, &models.UpdateBusinessRequest{Email: ptr("orders@aegli.gr")})
	assert.Equal(t, pkg.ValidationErrors{"email": "has already been taken"}, err)

	_, err = svc.Update(ctx, second, &models.UpdateBusinessRequest{BusinessType: ptr("bakery"), Email: ptr("nope")})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "business_type")
	assert.Contains(t, fields, "email")

	b, err := svc.Verify(ctx, second)
	require.NoError(t, err)
	assert.True(t, b.Verified)

	b, err = svc.Reject(ctx, second, &models.RejectRequest{Reason: "duplicate account"})
	require.NoError(t, err)
	assert.False(t, b.Verified)

	assert.Equal(t, []string{models.NotificationAccountVerified, models.NotificationAccountRejected}, notifier.types())
	assert.Equal(t, secondUser, notifier.notices[0].UserID)
	assert.Equal(t, ws.OpBusinessRejected, notifier.notices[1].Event.Op)

	detail, err := svc.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "hotel", detail.BusinessType)
	assert.Nil(t, detail.Subscription)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
