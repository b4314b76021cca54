package services

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
)

type productFixture struct {
	svc        ProductService
	producerID int64
	categoryID int64
}

func newProductFixture(t *testing.T) productFixture {
	t.Helper()
	db := dbtest.New(t)
	return productFixture{
		svc: NewProductService(
			repository.NewSQLiteProductRepo(db.Conn),
			repository.NewSQLiteCategoryRepo(db.Conn),
			repository.NewSQLiteProducerRepo(db.Conn),
		),
		producerID: insertProducer(t, db.Conn, "Kriti Farms"),
		categoryID: insertCategory(t, db.Conn, "Λάδι", "ladi"),
	}
}

func (f productFixture) request(name string) *models.CreateProductRequest {
	return &models.CreateProductRequest{
		Name:        name,
		Description: "Cold pressed",
		Price:       12.5,
		Stock:       ptr(10),
		CategoryID:  f.categoryID,
		ProducerID:  f.producerID,
	}
}

func TestProductCreateGeneratesSlugAndSKU(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.request("Ελαιόλαδο Κρήτης"))
	require.NoError(t, err)
	assert.Equal(t, "elaiolado-kritis", p.Slug)
	require.NotNil(t, p.SKU)
	assert.Regexp(t, regexp.MustCompile(fmt.Sprintf(`^%d-ELAIOLAD-[0-9A-F]{4}$`, f.producerID)), *p.SKU)
	assert.True(t, p.IsActive)
	assert.NotNil(t, p.Dimensions)

	again, err := f.svc.Create(ctx, f.request("Ελαιόλαδο Κρήτης"))
	require.NoError(t, err)
	assert.Equal(t, "elaiolado-kritis-1", again.Slug)
	assert.NotEqual(t, *p.SKU, *again.SKU)
}

func TestProductCreateValidation(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	req := f.request("Μέλι")
	req.DiscountPrice = ptr(20.0)
	req.Stock = nil
	_, err := f.svc.Create(ctx, req)
	fields := validationFields(t, err)
	assert.Contains(t, fields, "discount_price")
	assert.Contains(t, fields, "stock")

	req = f.request("Μέλι")
	req.CategoryID = 999
	req.ProducerID = 999
	_, err = f.svc.Create(ctx, req)
	fields = validationFields(t, err)
	assert.Contains(t, fields, "category_id")
	assert.Contains(t, fields, "producer_id")

	req = f.request("Μέλι")
	req.SKU = ptr("HONEY-1")
	_, err = f.svc.Create(ctx, req)
	require.NoError(t, err)

	req = f.request("Θυμαρίσιο")
	req.SKU = ptr("  HONEY-1 ")
	_, err = f.svc.Create(ctx, req)
	assert.Equal(t, "has already been taken", validationFields(t, err)["sku"])
}

func TestProductUpdate(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.request("Olive Oil"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, p.ID, &models.UpdateProductRequest{
		Name:          ptr("Extra Virgin Oil"),
		DiscountPrice: models.Some(10.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "extra-virgin-oil", updated.Slug)
	assert.InDelta(t, 10.0, updated.FinalPrice(), 0.001)

	_, err = f.svc.Update(ctx, p.ID, &models.UpdateProductRequest{Price: ptr(5.0)})
	assert.Contains(t, validationFields(t, err), "discount_price")

	cleared, err := f.svc.Update(ctx, p.ID, &models.UpdateProductRequest{DiscountPrice: models.Null[float64]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.DiscountPrice)

	_, err = f.svc.Update(ctx, 999, &models.UpdateProductRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestProductModeration(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.request("Feta"))
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, p.ID, &models.ModerateProductRequest{Note: ptr("  blurry photos ")})
	require.NoError(t, err)
	assert.False(t, rejected.IsActive)
	require.NotNil(t, rejected.RejectionNote)
	assert.Equal(t, "blurry photos", *rejected.RejectionNote)

	approved, err := f.svc.Approve(ctx, p.ID, &models.ModerateProductRequest{Note: ptr("   ")})
	require.NoError(t, err)
	assert.True(t, approved.IsActive)
	assert.Nil(t, approved.RejectionNote)

	_, err = f.svc.Approve(ctx, 999, &models.ModerateProductRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestProductDelete(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.request("Feta"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
