package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"grouporder/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MemoryStore keeps every collection in process. It enforces the same unique
// and reference constraints as the postgres schema.
type MemoryStore struct {
	mu  sync.RWMutex
	log *logrus.Logger
	now func() time.Time

	shops        []domain.Shop
	categories   []domain.Category
	items        []domain.Item
	users        []domain.User
	orders       []domain.Order
	participants []domain.OrderParticipant
	lineItems    []domain.OrderLineItem
}

var _ domain.Store = (*MemoryStore)(nil)

func NewMemoryStore(logger *logrus.Logger) *MemoryStore {
	return &MemoryStore{log: logger, now: time.Now}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func indexOf[T any](list []T, match func(T) bool) int {
	for i := range list {
		if match(list[i]) {
			return i
		}
	}
	return -1
}

func removeWhere[T any](list []T, match func(T) bool) []T {
	kept := list[:0]
	for _, v := range list {
		if !match(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// Shops

func (s *MemoryStore) CreateShop(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop.ID = newID(shop.ID)
	if indexOf(s.shops, func(v domain.Shop) bool { return v.ID == shop.ID }) >= 0 {
		return nil, fmt.Errorf("create shop: %w", domain.ErrAlreadyExists)
	}
	shop.CreatedAt = s.now()
	s.shops = append(s.shops, *shop)
	s.log.Debugf("Memory store: shop %s created", shop.ID)
	return shop, nil
}

func (s *MemoryStore) GetShopByID(_ context.Context, id string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.shops, func(v domain.Shop) bool { return v.ID == id })
	if i < 0 {
		return nil, notFound("shop", id)
	}
	shop := s.shops[i]
	return &shop, nil
}

func (s *MemoryStore) UpdateShop(_ context.Context, shop *domain.Shop) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.shops, func(v domain.Shop) bool { return v.ID == shop.ID })
	if i < 0 {
		return nil, notFound("shop", shop.ID)
	}
	shop.CreatedAt = s.shops[i].CreatedAt
	s.shops[i] = *shop
	return shop, nil
}

func (s *MemoryStore) DeleteShop(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.shops, func(v domain.Shop) bool { return v.ID == id })
	if i < 0 {
		return notFound("shop", id)
	}
	if indexOf(s.orders, func(o domain.Order) bool { return o.ShopID == id }) >= 0 {
		return fmt.Errorf("delete shop %s: %w", id, domain.ErrInUse)
	}
	var itemIDs []string
	for _, it := range s.items {
		if it.ShopID == id {
			itemIDs = append(itemIDs, it.ID)
		}
	}
	for _, itemID := range itemIDs {
		s.deleteItemLocked(itemID)
	}
	s.shops = append(s.shops[:i], s.shops[i+1:]...)
	return nil
}

func (s *MemoryStore) ListShops(_ context.Context) ([]domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Shop{}, s.shops...), nil
}

// Categories

func (s *MemoryStore) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	category.ID = newID(category.ID)
	if indexOf(s.categories, func(v domain.Category) bool {
		return v.ID == category.ID || v.Name == category.Name
	}) >= 0 {
		return nil, fmt.Errorf("create category '%s': %w", category.Name, domain.ErrAlreadyExists)
	}
	category.CreatedAt = s.now()
	s.categories = append(s.categories, *category)
	return category, nil
}

func (s *MemoryStore) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.categories, func(v domain.Category) bool { return v.ID == id })
	if i < 0 {
		return nil, notFound("category", id)
	}
	category := s.categories[i]
	return &category, nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.categories, func(v domain.Category) bool { return v.ID == category.ID })
	if i < 0 {
		return nil, notFound("category", category.ID)
	}
	if indexOf(s.categories, func(v domain.Category) bool {
		return v.ID != category.ID && v.Name == category.Name
	}) >= 0 {
		return nil, fmt.Errorf("update category %s: %w", category.ID, domain.ErrAlreadyExists)
	}
	category.CreatedAt = s.categories[i].CreatedAt
	s.categories[i] = *category
	return category, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.categories, func(v domain.Category) bool { return v.ID == id })
	if i < 0 {
		return notFound("category", id)
	}
	if indexOf(s.items, func(it domain.Item) bool { return it.CategoryID == id }) >= 0 {
		return fmt.Errorf("delete category %s: %w", id, domain.ErrInUse)
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	return nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories...), nil
}

// Items

func (s *MemoryStore) checkItemRefsLocked(item *domain.Item) error {
	if indexOf(s.shops, func(v domain.Shop) bool { return v.ID == item.ShopID }) < 0 {
		return fmt.Errorf("item shop %s: referenced record does not exist: %w", item.ShopID, domain.ErrNotFound)
	}
	if indexOf(s.categories, func(v domain.Category) bool { return v.ID == item.CategoryID }) < 0 {
		return fmt.Errorf("item category %s: referenced record does not exist: %w", item.CategoryID, domain.ErrNotFound)
	}
	return nil
}

func (s *MemoryStore) CreateItem(_ context.Context, item *domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkItemRefsLocked(item); err != nil {
		return nil, err
	}
	item.ID = newID(item.ID)
	if indexOf(s.items, func(v domain.Item) bool { return v.ID == item.ID }) >= 0 {
		return nil, fmt.Errorf("create item: %w", domain.ErrAlreadyExists)
	}
	item.CreatedAt = s.now()
	s.items = append(s.items, *item)
	return item, nil
}

func (s *MemoryStore) GetItemByID(_ context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.items, func(v domain.Item) bool { return v.ID == id })
	if i < 0 {
		return nil, notFound("item", id)
	}
	item := s.items[i]
	return &item, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, item *domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, func(v domain.Item) bool { return v.ID == item.ID })
	if i < 0 {
		return nil, notFound("item", item.ID)
	}
	if err := s.checkItemRefsLocked(item); err != nil {
		return nil, err
	}
	item.CreatedAt = s.items[i].CreatedAt
	s.items[i] = *item
	return item, nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.items, func(v domain.Item) bool { return v.ID == id }) < 0 {
		return notFound("item", id)
	}
	s.deleteItemLocked(id)
	return nil
}

// deleteItemLocked removes the item and the selections pointing at it.
func (s *MemoryStore) deleteItemLocked(id string) {
	s.items = removeWhere(s.items, func(v domain.Item) bool { return v.ID == id })
	s.lineItems = removeWhere(s.lineItems, func(li domain.OrderLineItem) bool { return li.ItemID == id })
}

func (s *MemoryStore) ListItems(_ context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []domain.Item{}
	for _, it := range s.items {
		if filter.ShopID != "" && it.ShopID != filter.ShopID {
			continue
		}
		if filter.CategoryID != "" && it.CategoryID != filter.CategoryID {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = newID(user.ID)
	if indexOf(s.users, func(v domain.User) bool {
		return v.ID == user.ID || strings.EqualFold(v.Email, user.Email)
	}) >= 0 {
		return nil, fmt.Errorf("create user '%s': %w", user.Email, domain.ErrAlreadyExists)
	}
	user.CreatedAt = s.now()
	s.users = append(s.users, *user)
	return user, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.users, func(v domain.User) bool { return v.ID == id })
	if i < 0 {
		return nil, notFound("user", id)
	}
	user := s.users[i]
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.users, func(v domain.User) bool { return v.Email == email })
	if i < 0 {
		return nil, notFound("user", email)
	}
	user := s.users[i]
	return &user, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User{}, s.users...), nil
}

// Orders

func (s *MemoryStore) checkOrderRefsLocked(order *domain.Order) error {
	if indexOf(s.shops, func(v domain.Shop) bool { return v.ID == order.ShopID }) < 0 {
		return fmt.Errorf("order shop %s: referenced record does not exist: %w", order.ShopID, domain.ErrNotFound)
	}
	if indexOf(s.users, func(v domain.User) bool { return v.ID == order.UserID }) < 0 {
		return fmt.Errorf("order owner %s: referenced record does not exist: %w", order.UserID, domain.ErrNotFound)
	}
	return nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOrderRefsLocked(order); err != nil {
		return nil, err
	}
	order.ID = newID(order.ID)
	if indexOf(s.orders, func(v domain.Order) bool { return v.ID == order.ID }) >= 0 {
		return nil, fmt.Errorf("create order: %w", domain.ErrAlreadyExists)
	}
	order.CreatedAt = s.now()
	s.orders = append(s.orders, *order)
	s.log.Debugf("Memory store: order %s created by %s", order.ID, order.UserID)
	return order, nil
}

func (s *MemoryStore) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.orders, func(v domain.Order) bool { return v.ID == id })
	if i < 0 {
		return nil, notFound("order", id)
	}
	order := s.orders[i]
	return &order, nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.orders, func(v domain.Order) bool { return v.ID == order.ID })
	if i < 0 {
		return nil, notFound("order", order.ID)
	}
	order.UserID = s.orders[i].UserID
	order.CreatedAt = s.orders[i].CreatedAt
	if err := s.checkOrderRefsLocked(order); err != nil {
		return nil, err
	}
	s.orders[i] = *order
	return order, nil
}

func (s *MemoryStore) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.orders, func(v domain.Order) bool { return v.ID == id })
	if i < 0 {
		return notFound("order", id)
	}
	s.orders = append(s.orders[:i], s.orders[i+1:]...)
	s.participants = removeWhere(s.participants, func(p domain.OrderParticipant) bool { return p.OrderID == id })
	s.lineItems = removeWhere(s.lineItems, func(li domain.OrderLineItem) bool { return li.OrderID == id })
	return nil
}

func (s *MemoryStore) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := make([]domain.Order, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		orders = append(orders, s.orders[i])
	}
	return orders, nil
}

// Participants

func (s *MemoryStore) AddParticipant(_ context.Context, p *domain.OrderParticipant) (*domain.OrderParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.orders, func(v domain.Order) bool { return v.ID == p.OrderID }) < 0 {
		return nil, fmt.Errorf("participant order %s: referenced record does not exist: %w", p.OrderID, domain.ErrNotFound)
	}
	if indexOf(s.users, func(v domain.User) bool { return v.ID == p.UserID }) < 0 {
		return nil, fmt.Errorf("participant user %s: referenced record does not exist: %w", p.UserID, domain.ErrNotFound)
	}
	if indexOf(s.participants, func(v domain.OrderParticipant) bool {
		return v.OrderID == p.OrderID && v.UserID == p.UserID
	}) >= 0 {
		return nil, fmt.Errorf("add participant %s: %w", p.UserID, domain.ErrAlreadyExists)
	}
	p.ID = newID(p.ID)
	s.participants = append(s.participants, *p)
	return p, nil
}

func (s *MemoryStore) RemoveParticipant(_ context.Context, orderID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.participants, func(v domain.OrderParticipant) bool {
		return v.OrderID == orderID && v.UserID == userID
	})
	if i < 0 {
		return notFound("participant", userID)
	}
	s.participants = append(s.participants[:i], s.participants[i+1:]...)
	return nil
}

func (s *MemoryStore) ListParticipants(_ context.Context, orderID string) ([]domain.OrderParticipant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participants := []domain.OrderParticipant{}
	for _, p := range s.participants {
		if p.OrderID == orderID {
			participants = append(participants, p)
		}
	}
	return participants, nil
}

func (s *MemoryStore) ListAllParticipants(_ context.Context) ([]domain.OrderParticipant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OrderParticipant{}, s.participants...), nil
}

// Line items

func (s *MemoryStore) CreateLineItem(_ context.Context, li *domain.OrderLineItem) (*domain.OrderLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.orders, func(v domain.Order) bool { return v.ID == li.OrderID }) < 0 {
		return nil, fmt.Errorf("line item order %s: referenced record does not exist: %w", li.OrderID, domain.ErrNotFound)
	}
	if indexOf(s.users, func(v domain.User) bool { return v.ID == li.UserID }) < 0 {
		return nil, fmt.Errorf("line item user %s: referenced record does not exist: %w", li.UserID, domain.ErrNotFound)
	}
	if indexOf(s.items, func(v domain.Item) bool { return v.ID == li.ItemID }) < 0 {
		return nil, fmt.Errorf("line item item %s: referenced record does not exist: %w", li.ItemID, domain.ErrNotFound)
	}
	if indexOf(s.lineItems, func(v domain.OrderLineItem) bool {
		return v.OrderID == li.OrderID && v.UserID == li.UserID && v.ItemID == li.ItemID
	}) >= 0 {
		return nil, fmt.Errorf("create line item for item %s: %w", li.ItemID, domain.ErrAlreadyExists)
	}
	li.ID = newID(li.ID)
	s.lineItems = append(s.lineItems, *li)
	return li, nil
}

func (s *MemoryStore) FindLineItem(_ context.Context, orderID, userID, itemID string) (*domain.OrderLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.lineItems, func(v domain.OrderLineItem) bool {
		return v.OrderID == orderID && v.UserID == userID && v.ItemID == itemID
	})
	if i < 0 {
		return nil, notFound("line item for item", itemID)
	}
	li := s.lineItems[i]
	return &li, nil
}

func (s *MemoryStore) DeleteLineItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.lineItems, func(v domain.OrderLineItem) bool { return v.ID == id })
	if i < 0 {
		return notFound("line item", id)
	}
	s.lineItems = append(s.lineItems[:i], s.lineItems[i+1:]...)
	return nil
}

func (s *MemoryStore) ListLineItems(_ context.Context, orderID string) ([]domain.OrderLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lineItems := []domain.OrderLineItem{}
	for _, li := range s.lineItems {
		if li.OrderID == orderID {
			lineItems = append(lineItems, li)
		}
	}
	return lineItems, nil
}

func (s *MemoryStore) ListAllLineItems(_ context.Context) ([]domain.OrderLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OrderLineItem{}, s.lineItems...), nil
}
