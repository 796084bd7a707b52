package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to create user with email %s: %v", user.Email, err)
		return nil, mapPQError(err, fmt.Sprintf("create user '%s'", user.Email))
	}
	r.log.Infof("Repository: User created successfully with ID: %s", user.ID)
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	return r.getOne(ctx, query, id, "id")
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	return r.getOne(ctx, query, email, "email")
}

func (r *postgresUserRepository) getOne(ctx context.Context, query, arg, by string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		r.log.Warnf("Repository: Failed to get user by %s %s: %v", by, arg, err)
		return nil, mapPQError(err, fmt.Sprintf("get user by %s", by))
	}
	return user, nil
}

func (r *postgresUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, password_hash, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		r.log.Errorf("Repository: Failed to list users: %v", err)
		return nil, mapPQError(err, "list users")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			r.log.Errorf("Repository: Failed to scan user row: %v", err)
			return nil, domain.Upstream("scan user", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, domain.Upstream("iterate users", err)
	}
	return users, nil
}
