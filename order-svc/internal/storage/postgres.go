package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tabletap/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

const restaurantColumns = `id, name, COALESCE(address, ''), COALESCE(description, ''), COALESCE(image_url, ''),
	latitude, longitude, loyalty_percentage, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner, rest *domain.Restaurant) error {
	return row.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.Description, &rest.ImageURL,
		&rest.Latitude, &rest.Longitude, &rest.LoyaltyPercentage, &rest.CreatedAt)
}

func (r *PostgresRepository) CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	if rest.ID == "" {
		rest.ID = uuid.NewString()
	}
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO restaurants (id, name, address, description, image_url, latitude, longitude, loyalty_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		rest.ID, rest.Name, rest.Address, rest.Description, rest.ImageURL, rest.Latitude, rest.Longitude, rest.LoyaltyPercentage,
	).Scan(&rest.CreatedAt)
}

func (r *PostgresRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		var rest domain.Restaurant
		if err := scanRestaurant(rows, &rest); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	row := r.DB.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
	if err := scanRestaurant(row, &rest); err != nil {
		return nil, notFound(err)
	}
	return &rest, nil
}

func (r *PostgresRepository) UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE restaurants
		SET name=$1, address=$2, description=$3, image_url=$4, latitude=$5, longitude=$6, loyalty_percentage=$7
		WHERE id=$8
		RETURNING `+restaurantColumns,
		rest.Name, rest.Address, rest.Description, rest.ImageURL, rest.Latitude, rest.Longitude, rest.LoyaltyPercentage, rest.ID)
	return notFound(scanRestaurant(row, rest))
}

func (r *PostgresRepository) DeleteRestaurant(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM restaurants WHERE id=$1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const menuColumns = `id, restaurant_id, name, COALESCE(description, ''), COALESCE(category, ''), price, discount_price,
	COALESCE(image_url, ''), created_at`

func scanMenuItem(row rowScanner, item *domain.MenuItem) error {
	var discount decimal.NullDecimal
	if err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Category,
		&item.Price, &discount, &item.ImageURL, &item.CreatedAt); err != nil {
		return err
	}
	item.DiscountPrice = nil
	if discount.Valid {
		item.DiscountPrice = &discount.Decimal
	}
	return nil
}

func (r *PostgresRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO menu_items (id, restaurant_id, name, description, category, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		item.ID, item.RestaurantID, item.Name, item.Description, item.Category, item.Price, item.ImageURL,
	).Scan(&item.CreatedAt)
}

func (r *PostgresRepository) ListMenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+menuColumns+`
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY category, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := scanMenuItem(rows, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) GetMenuItem(ctx context.Context, restaurantID, itemID string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	row := r.DB.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1 AND restaurant_id = $2`,
		itemID, restaurantID)
	if err := scanMenuItem(row, &item); err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *PostgresRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE menu_items
		SET name=$1, description=$2, category=$3, price=$4, image_url=$5
		WHERE id=$6 AND restaurant_id=$7`,
		item.Name, item.Description, item.Category, item.Price, item.ImageURL, item.ID, item.RestaurantID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *PostgresRepository) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM menu_items WHERE id=$1 AND restaurant_id=$2", itemID, restaurantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetDiscountPrice stores price as the item's discount, or clears it when price is nil.
func (r *PostgresRepository) SetDiscountPrice(ctx context.Context, restaurantID, itemID string, price *decimal.Decimal) error {
	value := decimal.NullDecimal{}
	if price != nil {
		value = decimal.NewNullDecimal(*price)
	}
	result, err := r.DB.ExecContext(ctx, "UPDATE menu_items SET discount_price=$1 WHERE id=$2 AND restaurant_id=$3",
		value, itemID, restaurantID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *PostgresRepository) ListCategories(ctx context.Context, restaurantID string) ([]domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, restaurant_id, name, created_at FROM categories
		WHERE restaurant_id = $1
		ORDER BY name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func categoryWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return domain.ErrCategoryExists
		case "23503":
			return domain.ErrNotFound
		}
	}
	return err
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO categories (id, restaurant_id, name) VALUES ($1, $2, $3)
		RETURNING created_at`,
		c.ID, c.RestaurantID, c.Name,
	).Scan(&c.CreatedAt)
	return categoryWriteError(err)
}

// RenameCategory renames the category and every menu item filed under it.
func (r *PostgresRepository) RenameCategory(ctx context.Context, restaurantID, categoryID, name string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var previous string
	err = tx.QueryRowContext(ctx, "SELECT name FROM categories WHERE id = $1 AND restaurant_id = $2 FOR UPDATE",
		categoryID, restaurantID).Scan(&previous)
	if err != nil {
		return notFound(err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE categories SET name = $1 WHERE id = $2", name, categoryID); err != nil {
		return categoryWriteError(err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE menu_items SET category = $1 WHERE restaurant_id = $2 AND category = $3",
		name, restaurantID, previous); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCategory removes the category; its items stay on the menu uncategorized.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRowContext(ctx, "DELETE FROM categories WHERE id = $1 AND restaurant_id = $2 RETURNING name",
		categoryID, restaurantID).Scan(&name)
	if err != nil {
		return notFound(err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE menu_items SET category = '' WHERE restaurant_id = $1 AND category = $2",
		restaurantID, name); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, COALESCE(email, ''), COALESCE(display_name, ''), role, COALESCE(restaurant_id, ''), created_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Email, &p.DisplayName, &role, &p.RestaurantID, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if p.Role, err = domain.ParseRole(role); err != nil {
		return nil, fmt.Errorf("profile %s: %w", userID, err)
	}
	return &p, nil
}

func (r *PostgresRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, email, display_name, role, restaurant_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email, display_name = EXCLUDED.display_name,
			role = EXCLUDED.role, restaurant_id = EXCLUDED.restaurant_id
		RETURNING created_at`,
		p.UserID, p.Email, p.DisplayName, string(p.Role), p.RestaurantID,
	).Scan(&p.CreatedAt)
}

func (r *PostgresRepository) SetProfileRole(ctx context.Context, userID string, role domain.Role) error {
	result, err := r.DB.ExecContext(ctx, "UPDATE profiles SET role=$1 WHERE user_id=$2", string(role), userID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *PostgresRepository) ListProfiles(ctx context.Context, restaurantID string) ([]domain.Profile, error) {
	query := `
		SELECT user_id, COALESCE(email, ''), COALESCE(display_name, ''), role, COALESCE(restaurant_id, ''), created_at
		FROM profiles`
	args := []any{}
	if restaurantID != "" {
		query += " WHERE restaurant_id = $1"
		args = append(args, restaurantID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		var p domain.Profile
		var role string
		if err := rows.Scan(&p.UserID, &p.Email, &p.DisplayName, &role, &p.RestaurantID, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Role = domain.Role(role)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfile succeeds when there is nothing to delete.
func (r *PostgresRepository) DeleteProfile(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM profiles WHERE user_id = $1", userID)
	return err
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
