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

type sqliteCategoryRepo struct {
	db database.TxQuerier
}

func NewSQLiteCategoryRepo(db database.TxQuerier) CategoryRepository {
	return &sqliteCategoryRepo{db: db}
}

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.type, c.parent_id, c.sort_order,
	       c.meta_title, c.meta_description, c.meta_keywords, c.created_at, c.updated_at,
	       p.id, p.name, p.slug
	FROM product_categories c
	LEFT JOIN product_categories p ON p.id = c.parent_id`

func scanCategory(row interface{ Scan(...any) error }, c *models.Category) error {
	var pID sql.NullInt64
	var pName, pSlug sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Type, &c.ParentID, &c.Order,
		&c.MetaTitle, &c.MetaDescription, &c.MetaKeywords, &c.CreatedAt, &c.UpdatedAt,
		&pID, &pName, &pSlug)
	if err != nil {
		return err
	}
	if pID.Valid {
		c.Parent = &models.CategorySummary{ID: pID.Int64, Name: pName.String, Slug: pSlug.String}
	}
	return nil
}

func (r *sqliteCategoryRepo) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO product_categories (name, slug, description, type, parent_id, sort_order,
		                                meta_title, meta_description, meta_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Slug, c.Description, c.Type, c.ParentID, c.Order,
		c.MetaTitle, c.MetaDescription, c.MetaKeywords,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category name or slug already in use", pkg.ErrUnprocessable)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *sqliteCategoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE c.id = ?`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *sqliteCategoryRepo) List(ctx context.Context, f models.CategoryFilter) ([]models.Category, int, error) {
	var w where
	w.search(f.Search, "c.name", "c.description")
	if f.Type != "" {
		w.add("c.type = ?", f.Type)
	}
	if f.ParentID != nil {
		w.add("c.parent_id = ?", *f.ParentID)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM product_categories c`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		categorySelect+w.String()+" ORDER BY "+f.Sort.SQL()+", c.id"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	cats, err := collect(rows, func(rs *sql.Rows, c *models.Category) error { return scanCategory(rs, c) })
	if err != nil {
		return nil, 0, err
	}
	return cats, total, nil
}

func (r *sqliteCategoryRepo) All(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` ORDER BY c.sort_order, c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, c *models.Category) error { return scanCategory(rs, c) })
}

func (r *sqliteCategoryRepo) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE product_categories
		SET name = ?, slug = ?, description = ?, type = ?, parent_id = ?, sort_order = ?,
		    meta_title = ?, meta_description = ?, meta_keywords = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Slug, c.Description, c.Type, c.ParentID, c.Order,
		c.MetaTitle, c.MetaDescription, c.MetaKeywords, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category name or slug already in use", pkg.ErrUnprocessable)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteCategoryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteCategoryRepo) NameExists(ctx context.Context, name string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM product_categories WHERE name = ? AND id != ?`, name, exceptID)
}

func (r *sqliteCategoryRepo) SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM product_categories WHERE slug = ? AND id != ?`, slug, exceptID)
}

func (r *sqliteCategoryRepo) MaxOrder(ctx context.Context) (int, error) {
	var max int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), 0) FROM product_categories`).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max category order: %w", err)
	}
	return max, nil
}

func (r *sqliteCategoryRepo) ParentID(ctx context.Context, id int64) (*int64, error) {
	var parent *int64
	err := r.db.QueryRowContext(ctx, `SELECT parent_id FROM product_categories WHERE id = ?`, id).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category parent: %w", err)
	}
	return parent, nil
}

func (r *sqliteCategoryRepo) Children(ctx context.Context, parentIDs []int64) (map[int64][]models.CategorySummary, error) {
	out := make(map[int64][]models.CategorySummary, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT parent_id, id, name, slug FROM product_categories
		WHERE parent_id IN (`+inPlaceholders(len(args))+`)
		ORDER BY sort_order, name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list child categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var parent int64
		var s models.CategorySummary
		if err := rows.Scan(&parent, &s.ID, &s.Name, &s.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan child category: %w", err)
		}
		out[parent] = append(out[parent], s)
	}
	return out, rows.Err()
}

func (r *sqliteCategoryRepo) CountChildren(ctx context.Context, id int64) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM product_categories WHERE parent_id = ?`, id)
}

func (r *sqliteCategoryRepo) CountProducts(ctx context.Context, id int64) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM product_category WHERE category_id = ?`, id)
}
