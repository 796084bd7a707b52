package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresItemRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresItemRepository(db *sql.DB, logger *logrus.Logger) domain.ItemRepository {
	return &postgresItemRepository{
		db:  db,
		log: logger,
	}
}

const itemColumns = `id, name, price, shop_id, category_id, created_at`

func scanItem(row interface{ Scan(...any) error }, item *domain.Item) error {
	return row.Scan(&item.ID, &item.Name, &item.Price, &item.ShopID, &item.CategoryID, &item.CreatedAt)
}

func (r *postgresItemRepository) CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `INSERT INTO items (id, name, price, shop_id, category_id)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, item.ID, item.Name, item.Price, item.ShopID, item.CategoryID).Scan(&item.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to create item '%s': %v", item.Name, err)
		return nil, mapPQError(err, fmt.Sprintf("create item '%s'", item.Name))
	}
	r.log.Infof("Item created successfully with ID: %s, Name: %s, Shop: %s", item.ID, item.Name, item.ShopID)
	return item, nil
}

func (r *postgresItemRepository) GetItemByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item := &domain.Item{}
	if err := scanItem(r.db.QueryRowContext(ctx, query, id), item); err != nil {
		r.log.Warnf("Failed to get item by ID %s: %v", id, err)
		return nil, mapPQError(err, fmt.Sprintf("get item %s", id))
	}
	return item, nil
}

func (r *postgresItemRepository) UpdateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	query := `UPDATE items
              SET name = $1, price = $2, shop_id = $3, category_id = $4
              WHERE id = $5
              RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, item.Name, item.Price, item.ShopID, item.CategoryID, item.ID).Scan(&item.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to update item ID %s: %v", item.ID, err)
		return nil, mapPQError(err, fmt.Sprintf("update item %s", item.ID))
	}
	r.log.Infof("Item updated successfully with ID: %s", item.ID)
	return item, nil
}

func (r *postgresItemRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete item ID %s: %v", id, err)
		return mapPQError(err, fmt.Sprintf("delete item %s", id))
	}
	if err := checkAffected(result, fmt.Sprintf("delete item %s", id)); err != nil {
		r.log.Warnf("Attempted to delete non-existent item ID %s", id)
		return err
	}
	r.log.Infof("Item deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresItemRepository) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.ShopID != "" {
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", argID))
		args = append(args, filter.ShopID)
		argID++
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argID))
		args = append(args, filter.CategoryID)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC"

	r.log.Debugf("Executing ListItems query: %s with args: %v", query, args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list items: %v", err)
		return nil, mapPQError(err, "list items")
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		if err := scanItem(rows, &item); err != nil {
			r.log.Errorf("Failed to scan item row: %v", err)
			return nil, domain.Upstream("scan item", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during items list iteration: %v", err)
		return nil, domain.Upstream("iterate items", err)
	}

	r.log.Debugf("Retrieved %d items", len(items))
	return items, nil
}
