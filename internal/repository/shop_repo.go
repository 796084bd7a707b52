package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresShopRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresShopRepository(db *sql.DB, logger *logrus.Logger) domain.ShopRepository {
	return &postgresShopRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresShopRepository) CreateShop(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	if shop.ID == "" {
		shop.ID = uuid.NewString()
	}
	query := `INSERT INTO shops (id, name, phone) VALUES ($1, $2, $3) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, shop.ID, shop.Name, shop.Phone).Scan(&shop.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to create shop '%s': %v", shop.Name, err)
		return nil, mapPQError(err, "create shop")
	}
	r.log.Infof("Shop created successfully with ID: %s, Name: %s", shop.ID, shop.Name)
	return shop, nil
}

func (r *postgresShopRepository) GetShopByID(ctx context.Context, id string) (*domain.Shop, error) {
	query := `SELECT id, name, phone, created_at FROM shops WHERE id = $1`
	shop := &domain.Shop{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&shop.ID, &shop.Name, &shop.Phone, &shop.CreatedAt)
	if err != nil {
		r.log.Warnf("Failed to get shop by ID %s: %v", id, err)
		return nil, mapPQError(err, fmt.Sprintf("get shop %s", id))
	}
	return shop, nil
}

func (r *postgresShopRepository) UpdateShop(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	query := `UPDATE shops SET name = $1, phone = $2 WHERE id = $3 RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, shop.Name, shop.Phone, shop.ID).Scan(&shop.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to update shop ID %s: %v", shop.ID, err)
		return nil, mapPQError(err, fmt.Sprintf("update shop %s", shop.ID))
	}
	r.log.Infof("Shop updated successfully with ID: %s", shop.ID)
	return shop, nil
}

func (r *postgresShopRepository) DeleteShop(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete shop ID %s: %v", id, err)
		return mapPQError(err, fmt.Sprintf("delete shop %s", id))
	}
	if err := checkAffected(result, fmt.Sprintf("delete shop %s", id)); err != nil {
		r.log.Warnf("Attempted to delete non-existent shop ID %s", id)
		return err
	}
	r.log.Infof("Shop deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresShopRepository) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, phone, created_at FROM shops ORDER BY created_at ASC`)
	if err != nil {
		r.log.Errorf("Failed to list shops: %v", err)
		return nil, mapPQError(err, "list shops")
	}
	defer rows.Close()

	shops := []domain.Shop{}
	for rows.Next() {
		var shop domain.Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.Phone, &shop.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan shop row: %v", err)
			return nil, domain.Upstream("scan shop", err)
		}
		shops = append(shops, shop)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during shops list iteration: %v", err)
		return nil, domain.Upstream("iterate shops", err)
	}

	r.log.Debugf("Retrieved %d shops", len(shops))
	return shops, nil
}
