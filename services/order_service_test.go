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

func TestOrderStatusTransitions(t *testing.T) {
	db := dbtest.New(t)
	hub := newRecordingHub()
	svc := NewOrderService(repository.NewSQLiteOrderRepo(db.Conn), hub)
	ctx := context.Background()

	userID := insertUser(t, db.Conn, "Giorgos", "giorgos@example.test", "consumer")
	producerID := insertProducer(t, db.Conn, "Kalamata Groves")
	categoryID := insertCategory(t, db.Conn, "Ελιές", "elies")
	product, err := NewProductService(
		repository.NewSQLiteProductRepo(db.Conn),
		repository.NewSQLiteCategoryRepo(db.Conn),
		repository.NewSQLiteProducerRepo(db.Conn),
	).Create(ctx, &models.CreateProductRequest{
		Name: "Kalamata olives", Description: "brined", Price: 6.5, Stock: ptr(40),
		CategoryID: categoryID, ProducerID: producerID,
	})
	require.NoError(t, err)

	orderID := insertOrder(t, db.Conn, userID, models.OrderStatusPending, 19.5, time.Now())
	insertOrderItem(t, db.Conn, orderID, product.ID, producerID, 3, 6.5)

	order, err := svc.Get(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-00000001", order.OrderNumber)
	assert.Equal(t, 3, order.ItemsCount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Kalamata olives", order.Items[0].ProductName)
	require.NotNil(t, order.User)
	assert.Equal(t, "Giorgos", order.User.Name)

	_, err = svc.UpdateStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: "lost"})
	assert.Contains(t, validationFields(t, err), "status")

	order, err = svc.UpdateStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)

	// Same status is a no-op without an event.
	_, err = svc.UpdateStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusPending})
	assert.ErrorIs(t, err, pkg.ErrUnprocessable)

	assert.Equal(t, []string{ws.OpOrderStatusUpdated, ws.OpOrderStatusUpdated}, hub.ops())

	page, err := svc.List(ctx, models.OrderFilter{Status: models.OrderStatusCancelled, UserID: &userID, Page: firstPage})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	page, err = svc.List(ctx, models.OrderFilter{Status: models.OrderStatusPending, Page: firstPage})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Data)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
