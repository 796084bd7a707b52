package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	query := `
        INSERT INTO orders (id, name, shop_id, user_id)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
	err := r.db.QueryRowContext(ctx, query, order.ID, order.Name, order.ShopID, order.UserID).Scan(&order.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to insert order for user %s: %v", order.UserID, err)
		return nil, mapPQError(err, "create order")
	}
	r.log.Infof("Order entry created with ID: %s for user: %s", order.ID, order.UserID)
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}
	query := `
        SELECT id, name, shop_id, user_id, created_at
        FROM orders
        WHERE id = $1
    `
	err := r.db.QueryRowContext(ctx, query, id).Scan(&order.ID, &order.Name, &order.ShopID, &order.UserID, &order.CreatedAt)
	if err != nil {
		r.log.Warnf("Failed to get order by ID %s: %v", id, err)
		return nil, mapPQError(err, fmt.Sprintf("get order %s", id))
	}
	return order, nil
}

func (r *postgresOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET name = $1, shop_id = $2
        WHERE id = $3
        RETURNING user_id, created_at
    `
	err := r.db.QueryRowContext(ctx, query, order.Name, order.ShopID, order.ID).Scan(&order.UserID, &order.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to update order ID %s: %v", order.ID, err)
		return nil, mapPQError(err, fmt.Sprintf("update order %s", order.ID))
	}
	r.log.Infof("Order %s updated successfully", order.ID)
	return order, nil
}

func (r *postgresOrderRepository) DeleteOrder(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return domain.Upstream("begin delete order", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			r.log.Errorf("Failed to commit transaction: %v", cErr)
			err = domain.Upstream("commit delete order", cErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_details WHERE order_id = $1`, id); err != nil {
		return mapPQError(err, fmt.Sprintf("delete line items of order %s", id))
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_users WHERE order_id = $1`, id); err != nil {
		return mapPQError(err, fmt.Sprintf("delete participants of order %s", id))
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapPQError(err, fmt.Sprintf("delete order %s", id))
	}
	if err = checkAffected(result, fmt.Sprintf("delete order %s", id)); err != nil {
		return err
	}

	r.log.Infof("Order %s deleted with its participants and line items", id)
	return nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	query := `
        SELECT id, name, shop_id, user_id, created_at
        FROM orders
        ORDER BY created_at DESC
    `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, mapPQError(err, "list orders")
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Name, &order.ShopID, &order.UserID, &order.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan order row: %v", err)
			return nil, domain.Upstream("scan order", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order list iteration: %v", err)
		return nil, domain.Upstream("iterate orders", err)
	}

	r.log.Debugf("Retrieved %d orders", len(orders))
	return orders, nil
}
