package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tabletap/order-svc/internal/domain"
)

const pendingColumns = `id, restaurant_id, COALESCE(restaurant_name, ''), items, original_total, balance_used, final_total,
	table_number, user_id, status, created_at, confirmed_at, COALESCE(confirmed_by, '')`

func scanPendingOrder(row rowScanner, order *domain.PendingOrder) error {
	var items []byte
	var status string
	var confirmedAt sql.NullTime
	if err := row.Scan(&order.ID, &order.RestaurantID, &order.RestaurantName, &items, &order.OriginalTotal,
		&order.BalanceUsed, &order.FinalTotal, &order.TableNumber, &order.UserID, &status, &order.CreatedAt,
		&confirmedAt, &order.ConfirmedBy); err != nil {
		return err
	}
	order.Status = domain.OrderStatus(status)
	if confirmedAt.Valid {
		at := confirmedAt.Time
		order.ConfirmedAt = &at
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return fmt.Errorf("decode items of pending order %s: %w", order.ID, err)
	}
	return nil
}

func (r *PostgresRepository) CreatePendingOrder(ctx context.Context, order *domain.PendingOrder) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO pending_orders (id, restaurant_id, restaurant_name, items, original_total, balance_used, final_total,
			table_number, user_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		RETURNING created_at`,
		order.ID, order.RestaurantID, order.RestaurantName, items, order.OriginalTotal, order.BalanceUsed,
		order.FinalTotal, order.TableNumber, order.UserID,
	).Scan(&order.CreatedAt)
}

func (r *PostgresRepository) GetPendingOrder(ctx context.Context, id string) (*domain.PendingOrder, error) {
	var order domain.PendingOrder
	row := r.DB.QueryRowContext(ctx, `SELECT `+pendingColumns+` FROM pending_orders WHERE id = $1`, id)
	if err := scanPendingOrder(row, &order); err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// ConfirmPendingOrder flips the order to confirmed and, in the same transaction,
// writes the finalized order and the ledger job owed for it. Only one caller can
// win the guarded update; every other caller gets ErrAlreadyConfirmed.
func (r *PostgresRepository) ConfirmPendingOrder(ctx context.Context, id, confirmedBy string, at time.Time) (*domain.Order, *domain.LedgerJob, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var pending domain.PendingOrder
	row := tx.QueryRowContext(ctx, `
		UPDATE pending_orders
		SET status = 'confirmed', confirmed_at = $2, confirmed_by = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+pendingColumns, id, at, confirmedBy)
	if err := scanPendingOrder(row, &pending); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, err
		}
		var status string
		err = tx.QueryRowContext(ctx, "SELECT status FROM pending_orders WHERE id = $1", id).Scan(&status)
		if err != nil {
			return nil, nil, notFound(err)
		}
		return nil, nil, domain.ErrAlreadyConfirmed
	}

	order := pending.Finalize(confirmedBy, at)
	if err := insertOrder(ctx, tx, order); err != nil {
		return nil, nil, err
	}

	job := &domain.LedgerJob{
		ID:           order.ID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		OrderTotal:   order.OriginalTotal,
		BalanceUsed:  order.BalanceUsed,
		Status:       domain.LedgerJobQueued,
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO ledger_jobs (id, user_id, restaurant_id, order_total, balance_used, status)
		VALUES ($1, $2, $3, $4, $5, 'queued')
		RETURNING created_at`,
		job.ID, job.UserID, job.RestaurantID, job.OrderTotal, job.BalanceUsed,
	).Scan(&job.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return order, job, nil
}

// CreateManualOrder records an order a waiter entered directly. It has no
// pending record and owes no balance update.
func (r *PostgresRepository) CreateManualOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}
	return tx.Commit()
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, restaurant_id, restaurant_name, original_total, balance_used, final_total, table_number,
			user_id, status, source, created_at, waiter_confirmed_at, confirmed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13)`,
		order.ID, order.RestaurantID, order.RestaurantName, order.OriginalTotal, order.BalanceUsed, order.FinalTotal,
		order.TableNumber, order.UserID, string(order.Status), string(order.Source), order.CreatedAt,
		order.WaiterConfirmedAt, order.ConfirmedBy,
	); err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			order.ID, item.ItemID, item.Name, item.UnitPrice, item.Quantity,
		); err != nil {
			return fmt.Errorf("insert item %s of order %s: %w", item.ItemID, order.ID, err)
		}
	}
	return nil
}

// ListOrders returns finalized orders of a restaurant confirmed at or after since,
// newest first, with their items.
func (r *PostgresRepository) ListOrders(ctx context.Context, restaurantID string, since time.Time) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, restaurant_id, COALESCE(restaurant_name, ''), original_total, balance_used, final_total, table_number,
			COALESCE(user_id, ''), status, source, created_at, waiter_confirmed_at, COALESCE(confirmed_by, '')
		FROM orders
		WHERE restaurant_id = $1 AND waiter_confirmed_at >= $2
		ORDER BY waiter_confirmed_at DESC`, restaurantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	index := map[string]int{}
	for rows.Next() {
		var order domain.Order
		var status, source string
		if err := rows.Scan(&order.ID, &order.RestaurantID, &order.RestaurantName, &order.OriginalTotal,
			&order.BalanceUsed, &order.FinalTotal, &order.TableNumber, &order.UserID, &status, &source,
			&order.CreatedAt, &order.WaiterConfirmedAt, &order.ConfirmedBy); err != nil {
			return nil, err
		}
		order.Status = domain.OrderStatus(status)
		order.Source = domain.OrderSource(source)
		order.Items = []domain.OrderItem{}
		index[order.ID] = len(orders)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.DB.QueryContext(ctx, `
		SELECT oi.order_id, oi.item_id, oi.name, oi.unit_price, oi.quantity
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.restaurant_id = $1 AND o.waiter_confirmed_at >= $2`, restaurantID, since)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}
