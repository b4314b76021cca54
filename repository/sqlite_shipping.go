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

type sqliteShippingRepo struct {
	db database.TxQuerier
}

func NewSQLiteShippingRepo(db database.TxQuerier) ShippingRepository {
	return &sqliteShippingRepo{db: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, what)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// ─── Zones ───

const zoneColumns = `SELECT id, name, description, is_active, created_at, updated_at FROM shipping_zones`

func scanZone(row interface{ Scan(...any) error }, z *models.ShippingZone) error {
	return row.Scan(&z.ID, &z.Name, &z.Description, &z.IsActive, &z.CreatedAt, &z.UpdatedAt)
}

func (r *sqliteShippingRepo) ListZones(ctx context.Context, isActive *bool) ([]models.ShippingZone, error) {
	var w where
	if isActive != nil {
		w.add("is_active = ?", boolInt(*isActive))
	}
	rows, err := r.db.QueryContext(ctx, zoneColumns+w.String()+" ORDER BY name", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping zones: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, z *models.ShippingZone) error { return scanZone(rs, z) })
}

func (r *sqliteShippingRepo) GetZone(ctx context.Context, id int64) (*models.ShippingZone, error) {
	z := &models.ShippingZone{}
	if err := scanZone(r.db.QueryRowContext(ctx, zoneColumns+` WHERE id = ?`, id), z); err != nil {
		return nil, notFound(err, "shipping zone")
	}
	return z, nil
}

func (r *sqliteShippingRepo) CreateZone(ctx context.Context, z *models.ShippingZone) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shipping_zones (name, description, is_active) VALUES (?, ?, ?)
		RETURNING id, created_at, updated_at`, z.Name, z.Description, z.IsActive).
		Scan(&z.ID, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shipping zone: %w", err)
	}
	return nil
}

func (r *sqliteShippingRepo) UpdateZone(ctx context.Context, z *models.ShippingZone) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE shipping_zones SET name = ?, description = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, z.Name, z.Description, z.IsActive, z.ID)
	if err != nil {
		return fmt.Errorf("failed to update shipping zone: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) DeleteZone(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shipping_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipping zone: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) ZoneInUse(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `
		SELECT 1 FROM shipping_rates WHERE zone_id = ?
		UNION ALL
		SELECT 1 FROM postal_code_zones WHERE zone_id = ?`, id, id)
}

// ─── Postal codes ───

const postalColumns = `
	SELECT pc.id, pc.postal_code_prefix, pc.zone_id, z.name, pc.created_at, pc.updated_at
	FROM postal_code_zones pc
	JOIN shipping_zones z ON z.id = pc.zone_id`

func scanPostal(row interface{ Scan(...any) error }, pc *models.PostalCodeZone) error {
	return row.Scan(&pc.ID, &pc.PostalCodePrefix, &pc.ZoneID, &pc.ZoneName, &pc.CreatedAt, &pc.UpdatedAt)
}

func (r *sqliteShippingRepo) ListPostalCodes(ctx context.Context, f models.PostalCodeFilter) ([]models.PostalCodeZone, int, error) {
	var w where
	if f.ZoneID != nil {
		w.add("pc.zone_id = ?", *f.ZoneID)
	}
	if f.Search != "" {
		w.add(`pc.postal_code_prefix LIKE ? ESCAPE '\'`, likeEscaper.Replace(f.Search)+"%")
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM postal_code_zones pc`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		postalColumns+w.String()+" ORDER BY pc.postal_code_prefix"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list postal codes: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, pc *models.PostalCodeZone) error { return scanPostal(rs, pc) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteShippingRepo) GetPostalCode(ctx context.Context, id int64) (*models.PostalCodeZone, error) {
	pc := &models.PostalCodeZone{}
	if err := scanPostal(r.db.QueryRowContext(ctx, postalColumns+` WHERE pc.id = ?`, id), pc); err != nil {
		return nil, notFound(err, "postal code")
	}
	return pc, nil
}

func postalWriteError(err error) error {
	switch {
	case isUniqueViolation(err):
		return pkg.ValidationErrors{"postal_code_prefix": "has already been taken"}
	case isForeignKeyViolation(err):
		return pkg.ValidationErrors{"zone_id": "does not exist"}
	default:
		return fmt.Errorf("failed to write postal code: %w", err)
	}
}

func (r *sqliteShippingRepo) CreatePostalCode(ctx context.Context, pc *models.PostalCodeZone) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO postal_code_zones (postal_code_prefix, zone_id) VALUES (?, ?)
		RETURNING id, created_at, updated_at`, pc.PostalCodePrefix, pc.ZoneID).
		Scan(&pc.ID, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		return postalWriteError(err)
	}
	return nil
}

func (r *sqliteShippingRepo) UpdatePostalCode(ctx context.Context, pc *models.PostalCodeZone) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE postal_code_zones SET postal_code_prefix = ?, zone_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, pc.PostalCodePrefix, pc.ZoneID, pc.ID)
	if err != nil {
		return postalWriteError(err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) DeletePostalCode(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM postal_code_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete postal code: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) UpsertPostalCode(ctx context.Context, prefix string, zoneID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE postal_code_zones SET zone_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE postal_code_prefix = ?`, zoneID, prefix)
	if err != nil {
		return false, postalWriteError(err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return false, nil
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO postal_code_zones (postal_code_prefix, zone_id) VALUES (?, ?)`, prefix, zoneID); err != nil {
		return false, postalWriteError(err)
	}
	return true, nil
}

func (r *sqliteShippingRepo) PostalPrefixes(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT postal_code_prefix, zone_id FROM postal_code_zones`)
	if err != nil {
		return nil, fmt.Errorf("failed to load postal prefixes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var prefix string
		var zone int64
		if err := rows.Scan(&prefix, &zone); err != nil {
			return nil, fmt.Errorf("failed to scan postal prefix: %w", err)
		}
		out[prefix] = zone
	}
	return out, rows.Err()
}

// ─── Weight tiers ───

const tierColumns = `SELECT id, min_weight_grams, max_weight_grams, description, created_at, updated_at FROM weight_tiers`

func scanTier(row interface{ Scan(...any) error }, t *models.WeightTier) error {
	return row.Scan(&t.ID, &t.MinWeightGrams, &t.MaxWeightGrams, &t.Description, &t.CreatedAt, &t.UpdatedAt)
}

func (r *sqliteShippingRepo) ListTiers(ctx context.Context) ([]models.WeightTier, error) {
	rows, err := r.db.QueryContext(ctx, tierColumns+` ORDER BY min_weight_grams`)
	if err != nil {
		return nil, fmt.Errorf("failed to list weight tiers: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, t *models.WeightTier) error { return scanTier(rs, t) })
}

func (r *sqliteShippingRepo) GetTier(ctx context.Context, id int64) (*models.WeightTier, error) {
	t := &models.WeightTier{}
	if err := scanTier(r.db.QueryRowContext(ctx, tierColumns+` WHERE id = ?`, id), t); err != nil {
		return nil, notFound(err, "weight tier")
	}
	return t, nil
}

func (r *sqliteShippingRepo) CreateTier(ctx context.Context, t *models.WeightTier) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO weight_tiers (min_weight_grams, max_weight_grams, description) VALUES (?, ?, ?)
		RETURNING id, created_at, updated_at`, t.MinWeightGrams, t.MaxWeightGrams, t.Description).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create weight tier: %w", err)
	}
	return nil
}

func (r *sqliteShippingRepo) UpdateTier(ctx context.Context, t *models.WeightTier) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE weight_tiers SET min_weight_grams = ?, max_weight_grams = ?, description = ?,
		       updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, t.MinWeightGrams, t.MaxWeightGrams, t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update weight tier: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) DeleteTier(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weight_tiers WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: weight tier is used by shipping rates", pkg.ErrUnprocessable)
		}
		return fmt.Errorf("failed to delete weight tier: %w", err)
	}
	return affectedOne(result)
}

// ─── Delivery methods ───

const methodColumns = `
	SELECT id, name, method_code, description, is_active, supports_cod, max_weight_grams, created_at, updated_at
	FROM delivery_methods`

func scanMethod(row interface{ Scan(...any) error }, m *models.DeliveryMethod) error {
	return row.Scan(&m.ID, &m.Name, &m.Code, &m.Description, &m.IsActive, &m.SupportsCOD,
		&m.MaxWeightGrams, &m.CreatedAt, &m.UpdatedAt)
}

func (r *sqliteShippingRepo) ListMethods(ctx context.Context, activeOnly bool) ([]models.DeliveryMethod, error) {
	query := methodColumns
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	rows, err := r.db.QueryContext(ctx, query+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery methods: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, m *models.DeliveryMethod) error { return scanMethod(rs, m) })
}

func (r *sqliteShippingRepo) GetMethod(ctx context.Context, id int64) (*models.DeliveryMethod, error) {
	m := &models.DeliveryMethod{}
	if err := scanMethod(r.db.QueryRowContext(ctx, methodColumns+` WHERE id = ?`, id), m); err != nil {
		return nil, notFound(err, "delivery method")
	}
	return m, nil
}

func (r *sqliteShippingRepo) CreateMethod(ctx context.Context, m *models.DeliveryMethod) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO delivery_methods (name, method_code, description, is_active, supports_cod, max_weight_grams)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		m.Name, m.Code, m.Description, m.IsActive, m.SupportsCOD, m.MaxWeightGrams).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return pkg.ValidationErrors{"method_code": "has already been taken"}
		}
		return fmt.Errorf("failed to create delivery method: %w", err)
	}
	return nil
}

func (r *sqliteShippingRepo) UpdateMethod(ctx context.Context, m *models.DeliveryMethod) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE delivery_methods
		SET name = ?, method_code = ?, description = ?, is_active = ?, supports_cod = ?, max_weight_grams = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, m.Name, m.Code, m.Description, m.IsActive, m.SupportsCOD, m.MaxWeightGrams, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return pkg.ValidationErrors{"method_code": "has already been taken"}
		}
		return fmt.Errorf("failed to update delivery method: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) DeleteMethod(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM delivery_methods WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: delivery method is used by shipping rates", pkg.ErrUnprocessable)
		}
		return fmt.Errorf("failed to delete delivery method: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) MethodCodeExists(ctx context.Context, code string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM delivery_methods WHERE method_code = ? AND id != ?`, code, exceptID)
}

// ─── Rates ───

const rateColumns = `
	SELECT sr.id, sr.zone_id, sr.weight_tier_id, sr.delivery_method_id, sr.producer_id, sr.price,
	       sr.multi_producer_discount, sr.min_producers_for_discount, sr.created_at, sr.updated_at,
	       z.name, dm.method_code
	FROM shipping_rates sr
	JOIN shipping_zones z ON z.id = sr.zone_id
	JOIN delivery_methods dm ON dm.id = sr.delivery_method_id`

func scanRate(row interface{ Scan(...any) error }, rt *models.ShippingRate) error {
	return row.Scan(&rt.ID, &rt.ZoneID, &rt.WeightTierID, &rt.DeliveryMethodID, &rt.ProducerID, &rt.Price,
		&rt.MultiProducerDiscount, &rt.MinProducersForDiscount, &rt.CreatedAt, &rt.UpdatedAt,
		&rt.ZoneName, &rt.MethodCode)
}

func (r *sqliteShippingRepo) ListRates(ctx context.Context, f models.ShippingRateFilter) ([]models.ShippingRate, int, error) {
	var w where
	if f.ZoneID != nil {
		w.add("sr.zone_id = ?", *f.ZoneID)
	}
	if f.WeightTierID != nil {
		w.add("sr.weight_tier_id = ?", *f.WeightTierID)
	}
	if f.DeliveryMethodID != nil {
		w.add("sr.delivery_method_id = ?", *f.DeliveryMethodID)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM shipping_rates sr`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, rateColumns+w.String()+
		" ORDER BY sr.zone_id, sr.weight_tier_id, sr.delivery_method_id, sr.producer_id"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shipping rates: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, rt *models.ShippingRate) error { return scanRate(rs, rt) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteShippingRepo) GetRate(ctx context.Context, id int64) (*models.ShippingRate, error) {
	rt := &models.ShippingRate{}
	if err := scanRate(r.db.QueryRowContext(ctx, rateColumns+` WHERE sr.id = ?`, id), rt); err != nil {
		return nil, notFound(err, "shipping rate")
	}
	return rt, nil
}

func rateWriteError(err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: a rate for this zone, weight tier and delivery method already exists", pkg.ErrUnprocessable)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: zone, weight tier, delivery method or producer does not exist", pkg.ErrUnprocessable)
	default:
		return fmt.Errorf("failed to write shipping rate: %w", err)
	}
}

func (r *sqliteShippingRepo) CreateRate(ctx context.Context, rt *models.ShippingRate) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shipping_rates (zone_id, weight_tier_id, delivery_method_id, producer_id, price,
		                            multi_producer_discount, min_producers_for_discount)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		rt.ZoneID, rt.WeightTierID, rt.DeliveryMethodID, rt.ProducerID, rt.Price,
		rt.MultiProducerDiscount, rt.MinProducersForDiscount).
		Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return rateWriteError(err)
	}
	return nil
}

func (r *sqliteShippingRepo) UpdateRate(ctx context.Context, rt *models.ShippingRate) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE shipping_rates
		SET zone_id = ?, weight_tier_id = ?, delivery_method_id = ?, producer_id = ?, price = ?,
		    multi_producer_discount = ?, min_producers_for_discount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		rt.ZoneID, rt.WeightTierID, rt.DeliveryMethodID, rt.ProducerID, rt.Price,
		rt.MultiProducerDiscount, rt.MinProducersForDiscount, rt.ID)
	if err != nil {
		return rateWriteError(err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) DeleteRate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shipping_rates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipping rate: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteShippingRepo) RateExists(ctx context.Context, rt *models.ShippingRate, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `
		SELECT 1 FROM shipping_rates
		WHERE zone_id = ? AND weight_tier_id = ? AND delivery_method_id = ?
		  AND COALESCE(producer_id, 0) = COALESCE(?, 0) AND id != ?`,
		rt.ZoneID, rt.WeightTierID, rt.DeliveryMethodID, rt.ProducerID, exceptID)
}

func (r *sqliteShippingRepo) UpsertRate(ctx context.Context, rt *models.ShippingRate) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM shipping_rates
		WHERE zone_id = ? AND weight_tier_id = ? AND delivery_method_id = ?
		  AND COALESCE(producer_id, 0) = COALESCE(?, 0)`,
		rt.ZoneID, rt.WeightTierID, rt.DeliveryMethodID, rt.ProducerID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, r.CreateRate(ctx, rt)
	case err != nil:
		return false, fmt.Errorf("failed to look up shipping rate: %w", err)
	}
	rt.ID = id
	return false, r.UpdateRate(ctx, rt)
}

func (r *sqliteShippingRepo) RatesForZone(ctx context.Context, zoneID int64) ([]models.ShippingRate, error) {
	rows, err := r.db.QueryContext(ctx, rateColumns+` WHERE sr.zone_id = ?`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone rates: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, rt *models.ShippingRate) error { return scanRate(rs, rt) })
}
