package repository

import (
	"context"
	"database/sql"
	"fmt"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type postgresParticipantRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresParticipantRepository(db *sql.DB, logger *logrus.Logger) domain.ParticipantRepository {
	return &postgresParticipantRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresParticipantRepository) AddParticipant(ctx context.Context, p *domain.OrderParticipant) (*domain.OrderParticipant, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query := `INSERT INTO order_users (id, order_id, user_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.OrderID, p.UserID); err != nil {
		r.log.Errorf("Failed to add user %s to order %s: %v", p.UserID, p.OrderID, err)
		return nil, mapPQError(err, fmt.Sprintf("add participant %s", p.UserID))
	}
	r.log.Infof("User %s added to order %s", p.UserID, p.OrderID)
	return p, nil
}

func (r *postgresParticipantRepository) RemoveParticipant(ctx context.Context, orderID, userID string) error {
	op := fmt.Sprintf("remove participant %s", userID)
	result, err := r.db.ExecContext(ctx, `DELETE FROM order_users WHERE order_id = $1 AND user_id = $2`, orderID, userID)
	if err != nil {
		r.log.Errorf("Failed to remove user %s from order %s: %v", userID, orderID, err)
		return mapPQError(err, op)
	}
	if err := checkAffected(result, op); err != nil {
		return err
	}
	r.log.Infof("User %s removed from order %s", userID, orderID)
	return nil
}

func (r *postgresParticipantRepository) ListParticipants(ctx context.Context, orderID string) ([]domain.OrderParticipant, error) {
	return r.list(ctx, `SELECT id, order_id, user_id FROM order_users WHERE order_id = $1 ORDER BY created_at, id`, orderID)
}

func (r *postgresParticipantRepository) ListAllParticipants(ctx context.Context) ([]domain.OrderParticipant, error) {
	return r.list(ctx, `SELECT id, order_id, user_id FROM order_users ORDER BY order_id, created_at, id`)
}

func (r *postgresParticipantRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.OrderParticipant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to list participants: %v", err)
		return nil, mapPQError(err, "list participants")
	}
	defer rows.Close()

	participants := []domain.OrderParticipant{}
	for rows.Next() {
		var p domain.OrderParticipant
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID); err != nil {
			return nil, domain.Upstream("scan participant", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, domain.Upstream("iterate participants", err)
	}
	return participants, nil
}
