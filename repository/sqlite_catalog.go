package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

type sqliteCatalogRepo struct {
	db database.TxQuerier
}

func NewSQLiteCatalogRepo(db database.TxQuerier) CatalogRepository {
	return &sqliteCatalogRepo{db: db}
}

const catalogSelect = `
	SELECT p.id, p.name, p.slug, p.description, p.short_description, p.price, p.discount_price,
	       p.stock, p.is_featured, p.main_image, p.weight_grams, p.created_at, p.updated_at,
	       pr.id, pr.business_name, pr.region,
	       (SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi
	         JOIN orders o ON o.id = oi.order_id
	         WHERE oi.product_id = p.id AND o.status != 'cancelled') AS sold
	FROM products p
	JOIN producers pr ON pr.id = p.producer_id`

func scanCatalogProduct(row interface{ Scan(...any) error }, p *models.CatalogProduct) error {
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.ShortDesc, &p.Price, &p.DiscountPrice,
		&p.Stock, &p.Featured, &p.MainImage, &p.WeightGrams, &p.CreatedAt, &p.UpdatedAt,
		&p.Producer.ID, &p.Producer.BusinessName, &p.Region,
		&p.Sold)
	if err != nil {
		return err
	}
	p.FinalPrice = p.Price
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		p.FinalPrice = *p.DiscountPrice
	}
	p.Categories = []models.CategorySummary{}
	return nil
}

func (r *sqliteCatalogRepo) ActiveProducts(ctx context.Context, q models.CatalogQuery) ([]models.CatalogProduct, error) {
	var w where
	w.add("p.is_active = 1")
	if q.Category != "" {
		w.add(`EXISTS (SELECT 1 FROM product_category pc
		         JOIN product_categories c ON c.id = pc.category_id
		         LEFT JOIN product_categories parent ON parent.id = c.parent_id
		         WHERE pc.product_id = p.id AND (c.slug = ? OR parent.slug = ?))`, q.Category, q.Category)
	}
	if q.ProducerID != nil {
		w.add("p.producer_id = ?", *q.ProducerID)
	}
	if q.InStock {
		w.add("p.stock > 0")
	}
	if q.Featured {
		w.add("p.is_featured = 1")
	}

	rows, err := r.db.QueryContext(ctx, catalogSelect+w.String()+" ORDER BY p.id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog products: %w", err)
	}
	products, err := collect(rows, func(rs *sql.Rows, p *models.CatalogProduct) error { return scanCatalogProduct(rs, p) })
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *sqliteCatalogRepo) attachCategories(ctx context.Context, products []models.CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}
	index := make(map[int64]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_category pc
		JOIN product_categories c ON c.id = pc.category_id
		JOIN products p ON p.id = pc.product_id AND p.is_active = 1
		ORDER BY c.name`)
	if err != nil {
		return fmt.Errorf("failed to load catalog categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var c models.CategorySummary
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Slug); err != nil {
			return fmt.Errorf("failed to scan catalog category: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Categories = append(products[i].Categories, c)
		}
	}
	return rows.Err()
}

func (r *sqliteCatalogRepo) ActiveBySlug(ctx context.Context, slug string) (*models.CatalogProduct, error) {
	p := models.CatalogProduct{}
	err := scanCatalogProduct(r.db.QueryRowContext(ctx, catalogSelect+` WHERE p.is_active = 1 AND p.slug = ?`, slug), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog product: %w", err)
	}
	list := []models.CatalogProduct{p}
	if err := r.attachCategories(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *sqliteCatalogRepo) Names(ctx context.Context) ([]models.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, 'product', slug FROM products WHERE is_active = 1
		UNION ALL
		SELECT name, 'category', slug FROM product_categories
		UNION ALL
		SELECT business_name, 'producer', '' FROM producers WHERE verified = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestion names: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, s *models.Suggestion) error {
		return rs.Scan(&s.Text, &s.Kind, &s.Slug)
	})
}
