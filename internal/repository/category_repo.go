package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	query := `INSERT INTO categories (id, name) VALUES ($1, $2) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, category.ID, category.Name).Scan(&category.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		return nil, mapPQError(err, fmt.Sprintf("create category '%s'", category.Name))
	}
	r.log.Infof("Category created successfully with ID: %s, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT id, name, created_at FROM categories WHERE id = $1`
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		r.log.Warnf("Failed to get category by ID %s: %v", id, err)
		return nil, mapPQError(err, fmt.Sprintf("get category %s", id))
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `UPDATE categories SET name = $1 WHERE id = $2 RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.ID).Scan(&category.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to update category ID %s: %v", category.ID, err)
		return nil, mapPQError(err, fmt.Sprintf("update category %s", category.ID))
	}
	r.log.Infof("Category updated successfully with ID: %s", category.ID)
	return category, nil
}

func (r *postgresCategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete category ID %s: %v", id, err)
		return mapPQError(err, fmt.Sprintf("delete category %s", id))
	}
	if err := checkAffected(result, fmt.Sprintf("delete category %s", id)); err != nil {
		r.log.Warnf("Attempted to delete non-existent category ID %s", id)
		return err
	}
	r.log.Infof("Category deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY created_at ASC`)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, mapPQError(err, "list categories")
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, domain.Upstream("scan category", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, domain.Upstream("iterate categories", err)
	}

	r.log.Debugf("Retrieved %d categories", len(categories))
	return categories, nil
}
