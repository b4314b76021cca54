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

type sqliteProductRepo struct {
	db database.TxQuerier
}

func NewSQLiteProductRepo(db database.TxQuerier) ProductRepository {
	return &sqliteProductRepo{db: db}
}

const productSelect = `
	SELECT p.id, p.producer_id, p.name, p.slug, p.sku, p.description, p.short_description, p.price,
	       p.discount_price, p.stock, p.weight_grams, p.dimensions, p.attributes, p.main_image,
	       p.is_active, p.is_featured, p.rejection_note, p.created_at, p.updated_at,
	       pr.business_name
	FROM products p
	JOIN producers pr ON pr.id = p.producer_id`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	var producerName string
	err := row.Scan(&p.ID, &p.ProducerID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.ShortDescription, &p.Price,
		&p.DiscountPrice, &p.Stock, &p.WeightGrams, &p.Dimensions, &p.Attributes, &p.MainImage,
		&p.IsActive, &p.IsFeatured, &p.RejectionNote, &p.CreatedAt, &p.UpdatedAt,
		&producerName)
	if err != nil {
		return err
	}
	p.Producer = &models.ProducerSummary{ID: p.ProducerID, BusinessName: producerName}
	return nil
}

func productWhere(f models.ProductFilter) where {
	var w where
	if f.ProducerID != nil {
		w.add("p.producer_id = ?", *f.ProducerID)
	}
	if f.CategoryID != nil {
		w.add("EXISTS (SELECT 1 FROM product_category pc WHERE pc.product_id = p.id AND pc.category_id = ?)", *f.CategoryID)
	}
	if f.IsActive != nil {
		w.add("p.is_active = ?", boolInt(*f.IsActive))
	}
	if f.IsFeatured != nil {
		w.add("p.is_featured = ?", boolInt(*f.IsFeatured))
	}
	if f.HasStock != nil {
		if *f.HasStock {
			w.add("p.stock > 0")
		} else {
			w.add("p.stock <= 0")
		}
	}
	if f.PriceMin != nil {
		w.add("p.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		w.add("p.price <= ?", *f.PriceMax)
	}
	if f.DateFrom != nil {
		w.add("p.created_at >= ?", database.FormatTime(*f.DateFrom))
	}
	if f.DateTo != nil {
		w.add("p.created_at < ?", database.FormatTime(*f.DateTo))
	}
	w.search(f.Search, "p.name", "p.description", "p.sku")
	return w
}

func (r *sqliteProductRepo) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	w := productWhere(f)

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM products p`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		productSelect+w.String()+" ORDER BY "+f.Sort.SQL()+", p.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := collect(rows, func(rs *sql.Rows, p *models.Product) error { return scanProduct(rs, p) })
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *sqliteProductRepo) attachCategories(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	args := make([]any, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		args[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_category pc
		JOIN product_categories c ON c.id = pc.category_id
		WHERE pc.product_id IN (`+inPlaceholders(len(args))+`)
		ORDER BY c.name`, args...)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var c models.CategorySummary
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Slug); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		i := index[productID]
		products[i].Categories = append(products[i].Categories, c)
	}
	return rows.Err()
}

func (r *sqliteProductRepo) Stats(ctx context.Context, f models.ProductFilter) (models.ProductListStats, error) {
	w := productWhere(f)
	var s models.ProductListStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(p.is_active = 1), 0),
		       COALESCE(SUM(p.is_featured = 1), 0),
		       COALESCE(SUM(p.stock <= 0), 0),
		       COALESCE(MIN(p.price), 0), COALESCE(MAX(p.price), 0), COALESCE(AVG(p.price), 0)
		FROM products p`+w.String(), w.args...).Scan(
		&s.Total, &s.Active, &s.Featured, &s.OutOfStock,
		&s.PriceRange.Min, &s.PriceRange.Max, &s.PriceRange.Avg)
	if err != nil {
		return s, fmt.Errorf("failed to compute product stats: %w", err)
	}
	return s, nil
}

func (r *sqliteProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p := models.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = ?`, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	list := []models.Product{p}
	if err := r.attachCategories(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *sqliteProductRepo) Create(ctx context.Context, p *models.Product, categoryID int64) error {
	query := `
		INSERT INTO products (producer_id, name, slug, sku, description, short_description, price,
		                      discount_price, stock, weight_grams, dimensions, attributes, is_active, is_featured)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ProducerID, p.Name, p.Slug, p.SKU, p.Description, p.ShortDescription, p.Price,
		p.DiscountPrice, p.Stock, p.WeightGrams, p.Dimensions, p.Attributes, p.IsActive, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return pkg.ValidationErrors{"sku": "has already been taken"}
		}
		if isForeignKeyViolation(err) {
			return pkg.ValidationErrors{"producer_id": "does not exist"}
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return r.ReplaceCategory(ctx, p.ID, categoryID)
}

func (r *sqliteProductRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET producer_id = ?, name = ?, slug = ?, sku = ?, description = ?, short_description = ?,
		    price = ?, discount_price = ?, stock = ?, weight_grams = ?, dimensions = ?, attributes = ?,
		    is_active = ?, is_featured = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.ProducerID, p.Name, p.Slug, p.SKU, p.Description, p.ShortDescription,
		p.Price, p.DiscountPrice, p.Stock, p.WeightGrams, p.Dimensions, p.Attributes,
		p.IsActive, p.IsFeatured, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return pkg.ValidationErrors{"sku": "has already been taken"}
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteProductRepo) ReplaceCategory(ctx context.Context, productID, categoryID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM product_category WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO product_category (product_id, category_id) VALUES (?, ?)`, productID, categoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return pkg.ValidationErrors{"category_id": "does not exist"}
		}
		return fmt.Errorf("failed to link product category: %w", err)
	}
	return nil
}

func (r *sqliteProductRepo) Delete(ctx context.Context, id int64) error {
	for _, table := range []string{"reviews", "questions"} {
		_, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE type = 'product' AND subject_id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product %s: %w", table, err)
		}
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteProductRepo) SetActive(ctx context.Context, id int64, active bool, note *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET is_active = ?, rejection_note = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, active, note, id)
	if err != nil {
		return fmt.Errorf("failed to set product activity: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteProductRepo) SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM products WHERE slug = ? AND id != ?`, slug, exceptID)
}

func (r *sqliteProductRepo) SKUExists(ctx context.Context, sku string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM products WHERE sku = ? AND id != ?`, sku, exceptID)
}

func (r *sqliteProductRepo) HasOrderItems(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM order_items WHERE product_id = ?`, id)
}

func (r *sqliteProductRepo) FeedbackCounts(ctx context.Context, id int64) (int, int, error) {
	var reviews, questions int
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM reviews WHERE type = 'product' AND subject_id = ?),
		       (SELECT COUNT(*) FROM questions WHERE type = 'product' AND subject_id = ?)`, id, id).
		Scan(&reviews, &questions)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count product feedback: %w", err)
	}
	return reviews, questions, nil
}
