package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/repository"
)

var dashboardNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newDashboardService(db *sql.DB) *dashboardService {
	svc := NewDashboardService(repository.NewSQLiteDashboardRepo(db), time.UTC).(*dashboardService)
	svc.now = func() time.Time { return dashboardNow }
	return svc
}

func setCreatedAt(t *testing.T, db *sql.DB, table string, id int64, at time.Time) {
	t.Helper()
	_, err := db.Exec(`UPDATE `+table+` SET created_at = ? WHERE id = ?`, database.FormatTime(at), id)
	require.NoError(t, err)
}

func TestDashboardStatsSections(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	customer := insertUser(t, db.Conn, "Anna", "anna@example.test", "consumer")
	oilProducer := insertProducer(t, db.Conn, "Sitia Oil")
	cheeseProducer := insertProducer(t, db.Conn, "Metsovo Dairy")
	_, err := db.Conn.Exec(`UPDATE users SET created_at = ?`, database.FormatTime(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	setCreatedAt(t, db.Conn, "users", customer, time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC))

	categoryID := insertCategory(t, db.Conn, "Τρόφιμα", "trofima")
	products := NewProductService(
		repository.NewSQLiteProductRepo(db.Conn),
		repository.NewSQLiteCategoryRepo(db.Conn),
		repository.NewSQLiteProducerRepo(db.Conn),
	)
	oil, err := products.Create(ctx, &models.CreateProductRequest{
		Name: "Olive oil", Description: "extra virgin", Price: 10, Stock: ptr(20),
		CategoryID: categoryID, ProducerID: oilProducer,
	})
	require.NoError(t, err)
	feta, err := products.Create(ctx, &models.CreateProductRequest{
		Name: "Feta", Description: "PDO", Price: 10, Stock: ptr(20),
		CategoryID: categoryID, ProducerID: cheeseProducer,
	})
	require.NoError(t, err)

	today := insertOrder(t, db.Conn, customer, models.OrderStatusDelivered, 30, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	insertOrderItem(t, db.Conn, today, oil.ID, oilProducer, 2, 10)
	insertOrderItem(t, db.Conn, today, feta.ID, cheeseProducer, 1, 10)
	yesterday := insertOrder(t, db.Conn, customer, models.OrderStatusPending, 50, time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC))
	insertOrderItem(t, db.Conn, yesterday, feta.ID, cheeseProducer, 5, 10)
	cancelled := insertOrder(t, db.Conn, customer, models.OrderStatusCancelled, 100, time.Date(2024, 6, 15, 11, 0, 0, 0, time.UTC))
	insertOrderItem(t, db.Conn, cancelled, oil.ID, oilProducer, 10, 10)

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	st, err := newDashboardService(db.Conn).Stats(ctx, &start, &end)
	require.NoError(t, err)

	assert.Equal(t, 6, st.DateRange.DaysInPeriod)

	assert.Equal(t, 2, st.OrderCountsByPeriod.Today)
	assert.Equal(t, 1, st.OrderCountsByPeriod.Yesterday)
	assert.Equal(t, 3, st.OrderCountsByPeriod.SelectedPeriod)
	assert.Zero(t, st.OrderCountsByPeriod.PreviousPeriod)
	assert.InDelta(t, 30, st.SalesByPeriod.Today, 0.001)
	assert.InDelta(t, 50, st.SalesByPeriod.Yesterday, 0.001)
	assert.InDelta(t, -40, st.SalesGrowth.Daily, 0.001)
	assert.Zero(t, st.SalesGrowth.Monthly, "no sales last month")
	assert.Zero(t, st.SalesGrowth.Period, "no sales in the previous period")

	assert.Equal(t, 1, st.NewUserCounts.Yesterday)
	assert.Equal(t, 2, st.NewUserCounts.LastMonth)
	assert.InDelta(t, -100, st.UserGrowth.Daily, 0.001)
	assert.InDelta(t, -50, st.UserGrowth.Monthly, 0.001)

	assert.InDelta(t, 80, st.TotalSales, 0.001)
	assert.InDelta(t, 40, st.AverageOrderValue, 0.001)
	assert.Equal(t, st.AverageOrderValue, st.OrderStats.AverageOrderValue)

	require.Len(t, st.TopProducts, 2)
	assert.Equal(t, models.TopProduct{ID: feta.ID, Name: "Feta", Quantity: 6, Revenue: 60}, st.TopProducts[0])
	assert.Equal(t, models.TopProduct{ID: oil.ID, Name: "Olive oil", Quantity: 2, Revenue: 20}, st.TopProducts[1])
	require.Len(t, st.TopProducers, 2)
	assert.Equal(t, models.TopProducer{ID: cheeseProducer, BusinessName: "Metsovo Dairy", OrdersCount: 2, Revenue: 60}, st.TopProducers[0])
	assert.Equal(t, oilProducer, st.TopProducers[1].ID)

	require.Len(t, st.RecentOrders, 3)
	assert.Equal(t, cancelled, st.RecentOrders[0].ID)
	assert.Equal(t, 10, st.RecentOrders[0].ItemsCount)
	assert.Equal(t, today, st.RecentOrders[1].ID)
	assert.Equal(t, 3, st.RecentOrders[1].ItemsCount)
	assert.Equal(t, "Anna", st.RecentOrders[1].Customer)

	require.Len(t, st.SalesByPeriodDetailed, 6)
	assert.Equal(t, models.Labeled{Label: "15 Jun", Value: 30}, st.SalesByPeriodDetailed[5])
	assert.Equal(t, models.Labeled{Label: "14 Jun", Value: 50}, st.SalesByPeriodDetailed[4])
	assert.Equal(t, models.Labeled{Label: "15 Jun", Value: 2}, st.OrdersByPeriod[5])

	require.Len(t, st.SalesByMonth, dashboardMonths)
	assert.Equal(t, models.Labeled{Label: "Jun 2024", Value: 80}, st.SalesByMonth[0])
	assert.Equal(t, models.Labeled{Label: "May 2024", Value: 2}, st.UserRegistrationsByMonth[1])

	assert.Equal(t, 2, st.PendingProducersCount)
	assert.Len(t, st.PendingProducers, 2)
	assert.Equal(t, 1, st.CategoryCount)
	assert.Equal(t, 2, st.ProductCounts.Total)
}

func TestDashboardStatsEmpty(t *testing.T) {
	db := dbtest.New(t)

	st, err := newDashboardService(db.Conn).Stats(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 15, st.DateRange.DaysInPeriod)
	assert.Zero(t, st.AverageOrderValue)
	assert.Zero(t, st.OrderStats.AverageOrderValue)
	assert.Equal(t, models.Growth{}, st.SalesGrowth)
	assert.Equal(t, models.Growth{}, st.OrderGrowth)
	assert.NotNil(t, st.TopProducts)
	assert.NotNil(t, st.TopProducers)
	assert.NotNil(t, st.RecentOrders)
	assert.NotNil(t, st.OrderCounts)
	assert.Len(t, st.SalesByPeriodDetailed, 15)
}

func TestDashboardStatsRejectsReversedRange(t *testing.T) {
	db := dbtest.New(t)
	start := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := newDashboardService(db.Conn).Stats(context.Background(), &start, &end)
	assert.Contains(t, validationFields(t, err), "end_date")
}
