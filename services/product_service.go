package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/slug"
	"github.com/dixis/dixis/repository"
)

type ProductService interface {
	List(ctx context.Context, f models.ProductFilter) (*models.ProductPage, error)
	Get(ctx context.Context, id int64) (*models.ProductDetail, error)
	Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	Update(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	Approve(ctx context.Context, id int64, req *models.ModerateProductRequest) (*models.Product, error)
	Reject(ctx context.Context, id int64, req *models.ModerateProductRequest) (*models.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	producerRepo repository.ProducerRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	producerRepo repository.ProducerRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		producerRepo: producerRepo,
	}
}

func (s *productService) List(ctx context.Context, f models.ProductFilter) (*models.ProductPage, error) {
	products, total, err := s.productRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	stats, err := s.productRepo.Stats(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.ProductPage{Page: pkg.NewPage(products, total, f.Page), Stats: stats}, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.ProductDetail, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, questions, err := s.productRepo.FeedbackCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ProductDetail{Product: *product, ReviewsCount: reviews, QuestionsCount: questions}, nil
}

func (s *productService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	trimmedSKU(req.SKU)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	v := pkg.ValidationErrors{}
	if err := s.checkRefs(ctx, v, &req.CategoryID, &req.ProducerID); err != nil {
		return nil, err
	}
	if req.SKU != nil && *req.SKU != "" {
		if err := s.checkSKU(ctx, v, *req.SKU, 0); err != nil {
			return nil, err
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	productSlug, err := uniqueSlug(ctx, req.Name, "product", func(ctx context.Context, candidate string) (bool, error) {
		return s.productRepo.SlugExists(ctx, candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	sku := req.SKU
	if sku == nil || *sku == "" {
		generated, err := s.generateSKU(ctx, req.ProducerID, productSlug)
		if err != nil {
			return nil, err
		}
		sku = &generated
	}

	product := &models.Product{
		ProducerID:       req.ProducerID,
		Name:             req.Name,
		Slug:             productSlug,
		SKU:              sku,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		DiscountPrice:    req.DiscountPrice,
		Stock:            *req.Stock,
		WeightGrams:      req.WeightGrams,
		Dimensions:       orEmpty(req.Dimensions),
		Attributes:       orEmpty(req.Attributes),
		IsActive:         req.IsActive == nil || *req.IsActive,
		IsFeatured:       req.IsFeatured,
	}

	if err := s.productRepo.Create(ctx, product, req.CategoryID); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *productService) Update(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := pkg.ValidationErrors{}
	if err := s.checkRefs(ctx, v, req.CategoryID, req.ProducerID); err != nil {
		return nil, err
	}
	if req.SKU != nil {
		if err := s.checkSKU(ctx, v, *req.SKU, id); err != nil {
			return nil, err
		}
	}

	if req.Name != nil && *req.Name != product.Name {
		product.Name = *req.Name
		product.Slug, err = uniqueSlug(ctx, product.Name, "product", func(ctx context.Context, candidate string) (bool, error) {
			return s.productRepo.SlugExists(ctx, candidate, id)
		})
		if err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	applyOptional(&product.ShortDescription, req.ShortDescription)
	if req.Price != nil {
		product.Price = *req.Price
	}
	applyOptional(&product.DiscountPrice, req.DiscountPrice)
	if product.DiscountPrice != nil && *product.DiscountPrice > 0 && *product.DiscountPrice >= product.Price {
		v.Add("discount_price", "must be lower than price")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	applyOptional(&product.WeightGrams, req.WeightGrams)
	if req.Dimensions != nil {
		product.Dimensions = orEmpty(*req.Dimensions)
	}
	if req.Attributes != nil {
		product.Attributes = orEmpty(*req.Attributes)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.ProducerID != nil {
		product.ProducerID = *req.ProducerID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.productRepo.ReplaceCategory(ctx, id, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return err
	}
	ordered, err := s.productRepo.HasOrderItems(ctx, id)
	if err != nil {
		return err
	}
	if ordered {
		return fmt.Errorf("%w: cannot delete a product that appears in orders, deactivate it instead", pkg.ErrUnprocessable)
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *productService) Approve(ctx context.Context, id int64, req *models.ModerateProductRequest) (*models.Product, error) {
	return s.moderate(ctx, id, true, req.Note)
}

func (s *productService) Reject(ctx context.Context, id int64, req *models.ModerateProductRequest) (*models.Product, error) {
	return s.moderate(ctx, id, false, req.Note)
}

func (s *productService) moderate(ctx context.Context, id int64, active bool, note *string) (*models.Product, error) {
	if note != nil {
		if trimmed := strings.TrimSpace(*note); trimmed == "" {
			note = nil
		} else if len([]rune(trimmed)) > 1000 {
			return nil, pkg.ValidationErrors{"note": "may not be greater than 1000 characters"}
		} else {
			note = &trimmed
		}
	}
	if err := s.productRepo.SetActive(ctx, id, active, note); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) checkRefs(ctx context.Context, v pkg.ValidationErrors, categoryID, producerID *int64) error {
	if categoryID != nil {
		_, err := s.categoryRepo.ParentID(ctx, *categoryID)
		switch {
		case errors.Is(err, pkg.ErrNotFound):
			v.Add("category_id", "the selected category does not exist")
		case err != nil:
			return err
		}
	}
	if producerID != nil {
		ok, err := s.producerRepo.Exists(ctx, *producerID)
		if err != nil {
			return err
		}
		if !ok {
			v.Add("producer_id", "the selected producer does not exist")
		}
	}
	return nil
}

func (s *productService) checkSKU(ctx context.Context, v pkg.ValidationErrors, sku string, exceptID int64) error {
	taken, err := s.productRepo.SKUExists(ctx, sku, exceptID)
	if err != nil {
		return err
	}
	if taken {
		v.Add("sku", "has already been taken")
	}
	return nil
}

// generateSKU builds <PRODUCERID>-<SLUG8>-<RAND4>, retrying on collision.
func (s *productService) generateSKU(ctx context.Context, producerID int64, productSlug string) (string, error) {
	stem := strings.ToUpper(strings.ReplaceAll(slug.Make(productSlug), "-", ""))
	if len(stem) > 8 {
		stem = stem[:8]
	}
	if stem == "" {
		stem = "ITEM"
	}

	for range 10 {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
		sku := strconv.FormatInt(producerID, 10) + "-" + stem + "-" + suffix
		taken, err := s.productRepo.SKUExists(ctx, sku, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return sku, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique sku for producer %d", producerID)
}

func trimmedSKU(sku *string) {
	if sku != nil {
		*sku = strings.TrimSpace(*sku)
	}
}

func orEmpty(m models.JSONMap) models.JSONMap {
	if m == nil {
		return models.JSONMap{}
	}
	return m
}
