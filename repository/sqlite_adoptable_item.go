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

type sqliteAdoptableItemRepo struct {
	db database.TxQuerier
}

func NewSQLiteAdoptableItemRepo(db database.TxQuerier) AdoptableItemRepository {
	return &sqliteAdoptableItemRepo{db: db}
}

const itemSelect = `
	SELECT i.id, i.producer_id, i.name, i.slug, i.description, i.type, i.location, i.status,
	       i.attributes, i.featured, i.main_image, i.gallery_images, i.created_at, i.updated_at,
	       pr.business_name,
	       (SELECT COUNT(*) FROM adoptions a WHERE a.adoptable_item_id = i.id)
	FROM adoptable_items i
	JOIN producers pr ON pr.id = i.producer_id`

func scanItem(row interface{ Scan(...any) error }, it *models.AdoptableItem) error {
	var producerName string
	err := row.Scan(&it.ID, &it.ProducerID, &it.Name, &it.Slug, &it.Description, &it.Type, &it.Location, &it.Status,
		&it.Attributes, &it.Featured, &it.MainImage, &it.GalleryImages, &it.CreatedAt, &it.UpdatedAt,
		&producerName, &it.AdoptionsCount)
	if err != nil {
		return err
	}
	it.Producer = &models.ProducerSummary{ID: it.ProducerID, BusinessName: producerName}
	return nil
}

func (r *sqliteAdoptableItemRepo) List(ctx context.Context, f models.AdoptableItemFilter) ([]models.AdoptableItem, int, error) {
	var w where
	if f.ProducerID != nil {
		w.add("i.producer_id = ?", *f.ProducerID)
	}
	if f.Type != "" {
		w.add("i.type = ?", f.Type)
	}
	if f.Status != "" {
		w.add("i.status = ?", f.Status)
	}
	w.search(f.Search, "i.name")

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM adoptable_items i`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		itemSelect+w.String()+" ORDER BY "+f.Sort.SQL()+", i.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list adoptable items: %w", err)
	}
	items, err := collect(rows, func(rs *sql.Rows, it *models.AdoptableItem) error { return scanItem(rs, it) })
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *sqliteAdoptableItemRepo) GetByID(ctx context.Context, id int64) (*models.AdoptableItem, error) {
	it := &models.AdoptableItem{}
	err := scanItem(r.db.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id), it)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: adoptable item", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get adoptable item: %w", err)
	}
	return it, nil
}

func (r *sqliteAdoptableItemRepo) Create(ctx context.Context, it *models.AdoptableItem) error {
	query := `
		INSERT INTO adoptable_items (producer_id, name, slug, description, type, location, status,
		                             attributes, featured, main_image, gallery_images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		it.ProducerID, it.Name, it.Slug, it.Description, it.Type, it.Location, it.Status,
		it.Attributes, it.Featured, it.MainImage, it.GalleryImages,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return pkg.ValidationErrors{"producer_id": "does not exist"}
		}
		return fmt.Errorf("failed to create adoptable item: %w", err)
	}
	return nil
}

func (r *sqliteAdoptableItemRepo) Update(ctx context.Context, it *models.AdoptableItem) error {
	query := `
		UPDATE adoptable_items
		SET producer_id = ?, name = ?, slug = ?, description = ?, type = ?, location = ?, status = ?,
		    attributes = ?, featured = ?, main_image = ?, gallery_images = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		it.ProducerID, it.Name, it.Slug, it.Description, it.Type, it.Location, it.Status,
		it.Attributes, it.Featured, it.MainImage, it.GalleryImages, it.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return pkg.ValidationErrors{"producer_id": "does not exist"}
		}
		return fmt.Errorf("failed to update adoptable item: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptableItemRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM adoptable_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete adoptable item: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptableItemRepo) SetStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE adoptable_items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set adoptable item status: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptableItemRepo) SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM adoptable_items WHERE slug = ? AND id != ?`, slug, exceptID)
}

func (r *sqliteAdoptableItemRepo) HasActiveAdoptions(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM adoptions WHERE adoptable_item_id = ? AND status = 'active'`, id)
}
