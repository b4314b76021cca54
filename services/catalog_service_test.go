package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/filter"
	"github.com/dixis/dixis/repository"
)

type catalogRow struct {
	producerID  int64
	categoryID  int64
	name, slug  string
	description string
	price       float64
	discount    *float64
	stock       int
	active      bool
	featured    bool
	createdAt   time.Time
}

func insertCatalogProduct(t *testing.T, db *sql.DB, r catalogRow) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO products (producer_id, name, slug, description, price, discount_price, stock, is_active, is_featured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.producerID, r.name, r.slug, r.description, r.price, r.discount, r.stock, r.active, r.featured,
		database.FormatTime(r.createdAt))
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO product_category (product_id, category_id) VALUES (?, ?)`, id, r.categoryID)
	require.NoError(t, err)
	return id
}

func verifyProducer(t *testing.T, db *sql.DB, id int64) {
	t.Helper()
	_, err := db.Exec(`UPDATE producers SET verified = 1 WHERE id = ?`, id)
	require.NoError(t, err)
}

func newCatalogService(t *testing.T, db *sql.DB) CatalogService {
	t.Helper()
	compiler := filter.NewCompiler(time.Minute)
	t.Cleanup(compiler.Close)
	return NewCatalogService(repository.NewSQLiteCatalogRepo(db), compiler)
}

type catalogFixture struct {
	svc                        CatalogService
	honey, oil, thyme, feta    int64
	inactiveSlug, discountSlug string
}

func newCatalogFixture(t *testing.T) catalogFixture {
	t.Helper()
	db := dbtest.New(t)

	kriti := insertProducer(t, db.Conn, "Kriti Farms")
	epirus := insertProducer(t, db.Conn, "Ηπειρώτικο Μελισσοκομείο")
	verifyProducer(t, db.Conn, kriti)
	verifyProducer(t, db.Conn, epirus)

	honeyCat := insertCategory(t, db.Conn, "Μέλι", "honey")
	oilCat := insertCategory(t, db.Conn, "Ελαιόλαδο", "oil")
	herbCat := insertCategory(t, db.Conn, "Βότανα", "herbs")
	cheeseCat := insertCategory(t, db.Conn, "Τυριά", "cheese")

	day := func(d int) time.Time { return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC) }
	f := catalogFixture{svc: newCatalogService(t, db.Conn), inactiveSlug: "krema-meliou", discountSlug: "elaiolado-koroneiki"}
	f.honey = insertCatalogProduct(t, db.Conn, catalogRow{
		producerID: kriti, categoryID: honeyCat, name: "Μέλι θυμαρίσιο", slug: "meli-thymarisio",
		description: "Κρητικό", price: 12, stock: 5, active: true, featured: true, createdAt: day(3),
	})
	f.oil = insertCatalogProduct(t, db.Conn, catalogRow{
		producerID: kriti, categoryID: oilCat, name: "Ελαιόλαδο Κορωνέικη", slug: f.discountSlug,
		description: "ιδανικό με μέλι", price: 15, discount: ptr(9.0), stock: 10, active: true, createdAt: day(2),
	})
	f.thyme = insertCatalogProduct(t, db.Conn, catalogRow{
		producerID: kriti, categoryID: herbCat, name: "Θυμάρι αποξηραμένο", slug: "thymari",
		price: 4, stock: 0, active: true, createdAt: day(4),
	})
	insertCatalogProduct(t, db.Conn, catalogRow{
		producerID: epirus, categoryID: honeyCat, name: "Κρέμα μελιού", slug: f.inactiveSlug,
		price: 20, stock: 8, active: false, createdAt: day(5),
	})
	f.feta = insertCatalogProduct(t, db.Conn, catalogRow{
		producerID: epirus, categoryID: cheeseCat, name: "Feta", slug: "feta",
		price: 7, stock: 3, active: true, createdAt: day(1),
	})

	buyer := insertUser(t, db.Conn, "Sofia", "sofia@example.test", "consumer")
	sold := insertOrder(t, db.Conn, buyer, models.OrderStatusDelivered, 12, day(6))
	insertOrderItem(t, db.Conn, sold, f.thyme, kriti, 3, 4)
	cancelled := insertOrder(t, db.Conn, buyer, models.OrderStatusCancelled, 120, day(6))
	insertOrderItem(t, db.Conn, cancelled, f.honey, kriti, 10, 12)
	return f
}

func catalogIDs(page pkg.Page[models.CatalogProduct]) []int64 {
	out := make([]int64, len(page.Data))
	for i, p := range page.Data {
		out[i] = p.ID
	}
	return out
}

func TestCatalogSortModes(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	tests := []struct {
		sort string
		want []int64
	}{
		{"price_asc", []int64{f.thyme, f.feta, f.oil, f.honey}},
		{"price_desc", []int64{f.honey, f.oil, f.feta, f.thyme}},
		{"newest", []int64{f.thyme, f.honey, f.oil, f.feta}},
		{"popular", []int64{f.thyme, f.honey, f.oil, f.feta}},
		{"name_asc", []int64{f.feta, f.oil, f.thyme, f.honey}},
		{"name_desc", []int64{f.honey, f.thyme, f.oil, f.feta}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			page, err := f.svc.List(ctx, models.CatalogQuery{Sort: tt.sort, Page: firstPage})
			require.NoError(t, err)
			assert.Equal(t, 4, page.Total, "inactive products are hidden")
			assert.Equal(t, tt.want, catalogIDs(page))
		})
	}
}

func TestCatalogFilters(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	page, err := f.svc.List(ctx, models.CatalogQuery{Search: "ΜΕΛΙ", Page: firstPage})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.honey, f.feta, f.oil}, catalogIDs(page), "name beats producer beats description")

	page, err = f.svc.List(ctx, models.CatalogQuery{Filter: "final_price < 10 && stock > 0", Sort: "price_asc", Page: firstPage})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.feta, f.oil}, catalogIDs(page))

	page, err = f.svc.List(ctx, models.CatalogQuery{Category: "honey", Page: firstPage})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.honey}, catalogIDs(page))

	page, err = f.svc.List(ctx, models.CatalogQuery{MinPrice: ptr(5.0), MaxPrice: ptr(10.0), InStock: true, Sort: "price_asc", Page: firstPage})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.feta, f.oil}, catalogIDs(page))

	page, err = f.svc.List(ctx, models.CatalogQuery{Sort: "price_asc", Page: pkg.PageParams{Page: 2, PerPage: 2}})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []int64{f.oil, f.honey}, catalogIDs(page))

	page, err = f.svc.List(ctx, models.CatalogQuery{Search: "σοκολάτα", Page: firstPage})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Zero(t, page.Total)

	_, err = f.svc.List(ctx, models.CatalogQuery{Filter: "price <", Page: firstPage})
	assert.ErrorIs(t, err, pkg.ErrUnprocessable)

	_, err = f.svc.List(ctx, models.CatalogQuery{Sort: "cheapest", Page: firstPage})
	assert.Contains(t, validationFields(t, err), "sort")

	_, err = f.svc.List(ctx, models.CatalogQuery{MinPrice: ptr(10.0), MaxPrice: ptr(5.0), Page: firstPage})
	assert.Contains(t, validationFields(t, err), "max_price")
}

func TestCatalogGetBySlug(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	p, err := f.svc.GetBySlug(ctx, f.discountSlug)
	require.NoError(t, err)
	assert.InDelta(t, 9, p.FinalPrice, 0.001)
	assert.Equal(t, "Kriti Farms", p.Producer.BusinessName)
	require.Len(t, p.Categories, 1)
	assert.Equal(t, "oil", p.Categories[0].Slug)

	_, err = f.svc.GetBySlug(ctx, f.inactiveSlug)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestCatalogSuggestions(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	popular, err := f.svc.Suggestions(ctx, "  ")
	require.NoError(t, err)
	require.Len(t, popular, maxSuggestions)
	assert.Equal(t, models.Suggestion{Text: "ελαιόλαδο", Kind: "popular"}, popular[0])

	out, err := f.svc.Suggestions(ctx, "ΜΕΛΙ")
	require.NoError(t, err)
	require.Len(t, out, 3, "inactive products are not suggested")
	assert.ElementsMatch(t, []models.Suggestion{
		{Text: "Μέλι θυμαρίσιο", Kind: "product", Slug: "meli-thymarisio"},
		{Text: "Μέλι", Kind: "category", Slug: "honey"},
	}, out[:2])
	assert.Equal(t, models.Suggestion{Text: "Ηπειρώτικο Μελισσοκομείο", Kind: "producer"}, out[2])

	none, err := f.svc.Suggestions(ctx, "σοκολάτα")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCatalogSuggestionsCapPrefersPrefix(t *testing.T) {
	db := dbtest.New(t)
	for i := 1; i <= 5; i++ {
		insertCategory(t, db.Conn, fmt.Sprintf("Σαλάτα μελιτζάνας %d", i), fmt.Sprintf("salata-%d", i))
	}
	for i := 1; i <= 5; i++ {
		insertCategory(t, db.Conn, fmt.Sprintf("Μελιτζάνα %d", i), fmt.Sprintf("melitzana-%d", i))
	}

	out, err := newCatalogService(t, db.Conn).Suggestions(context.Background(), "μελιτζανα")
	require.NoError(t, err)
	require.Len(t, out, maxSuggestions)
	for i, s := range out[:5] {
		assert.Equal(t, fmt.Sprintf("Μελιτζάνα %d", i+1), s.Text)
	}
	for _, s := range out[5:] {
		assert.Contains(t, s.Text, "Σαλάτα")
	}
}
