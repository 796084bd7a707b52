package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresLineItemRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresLineItemRepository(db *sql.DB, logger *logrus.Logger) domain.LineItemRepository {
	return &postgresLineItemRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresLineItemRepository) CreateLineItem(ctx context.Context, li *domain.OrderLineItem) (*domain.OrderLineItem, error) {
	if li.ID == "" {
		li.ID = uuid.NewString()
	}
	query := `INSERT INTO order_details (id, order_id, user_id, item_id) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, li.ID, li.OrderID, li.UserID, li.ItemID); err != nil {
		r.log.Warnf("Failed to insert line item (order %s, user %s, item %s): %v", li.OrderID, li.UserID, li.ItemID, err)
		return nil, mapPQError(err, fmt.Sprintf("create line item for item %s", li.ItemID))
	}
	r.log.Infof("Line item %s inserted for order %s, item %s", li.ID, li.OrderID, li.ItemID)
	return li, nil
}

func (r *postgresLineItemRepository) FindLineItem(ctx context.Context, orderID, userID, itemID string) (*domain.OrderLineItem, error) {
	query := `
        SELECT id, order_id, user_id, item_id
        FROM order_details
        WHERE order_id = $1 AND user_id = $2 AND item_id = $3
    `
	li := &domain.OrderLineItem{}
	err := r.db.QueryRowContext(ctx, query, orderID, userID, itemID).Scan(&li.ID, &li.OrderID, &li.UserID, &li.ItemID)
	if err != nil {
		return nil, mapPQError(err, fmt.Sprintf("find line item for item %s", itemID))
	}
	return li, nil
}

func (r *postgresLineItemRepository) DeleteLineItem(ctx context.Context, id string) error {
	op := fmt.Sprintf("delete line item %s", id)
	result, err := r.db.ExecContext(ctx, `DELETE FROM order_details WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete line item %s: %v", id, err)
		return mapPQError(err, op)
	}
	if err := checkAffected(result, op); err != nil {
		return err
	}
	r.log.Infof("Line item %s deleted", id)
	return nil
}

func (r *postgresLineItemRepository) ListLineItems(ctx context.Context, orderID string) ([]domain.OrderLineItem, error) {
	return r.list(ctx, `SELECT id, order_id, user_id, item_id FROM order_details WHERE order_id = $1 ORDER BY created_at, id`, orderID)
}

func (r *postgresLineItemRepository) ListAllLineItems(ctx context.Context) ([]domain.OrderLineItem, error) {
	return r.list(ctx, `SELECT id, order_id, user_id, item_id FROM order_details ORDER BY order_id, created_at, id`)
}

func (r *postgresLineItemRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.OrderLineItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to query line items: %v", err)
		return nil, mapPQError(err, "list line items")
	}
	defer rows.Close()

	lineItems := []domain.OrderLineItem{}
	for rows.Next() {
		var li domain.OrderLineItem
		if err := rows.Scan(&li.ID, &li.OrderID, &li.UserID, &li.ItemID); err != nil {
			r.log.Errorf("Failed to scan line item row: %v", err)
			return nil, domain.Upstream("scan line item", err)
		}
		lineItems = append(lineItems, li)
	}
	if err = rows.Err(); err != nil {
		return nil, domain.Upstream("iterate line items", err)
	}

	r.log.Debugf("Retrieved %d line items", len(lineItems))
	return lineItems, nil
}
