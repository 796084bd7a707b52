package repository

import (
	"database/sql"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresStore struct {
	domain.ShopRepository
	domain.CategoryRepository
	domain.ItemRepository
	domain.UserRepository
	domain.OrderRepository
	domain.ParticipantRepository
	domain.LineItemRepository
}

// NewPostgresStore wires every postgres repository onto one connection pool.
func NewPostgresStore(db *sql.DB, logger *logrus.Logger) domain.Store {
	return &postgresStore{
		ShopRepository:        NewPostgresShopRepository(db, logger),
		CategoryRepository:    NewPostgresCategoryRepository(db, logger),
		ItemRepository:        NewPostgresItemRepository(db, logger),
		UserRepository:        NewPostgresUserRepository(db, logger),
		OrderRepository:       NewPostgresOrderRepository(db, logger),
		ParticipantRepository: NewPostgresParticipantRepository(db, logger),
		LineItemRepository:    NewPostgresLineItemRepository(db, logger),
	}
}
