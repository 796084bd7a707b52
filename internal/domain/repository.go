package domain

import "context"

// Collection names match the table names of the store.
type Collection string

const (
	CollectionShops        Collection = "shops"
	CollectionCategories   Collection = "categories"
	CollectionItems        Collection = "items"
	CollectionUsers        Collection = "users"
	CollectionOrders       Collection = "orders"
	CollectionParticipants Collection = "order_users"
	CollectionLineItems    Collection = "order_details"
)

// AllCollections lists every collection in load order.
var AllCollections = []Collection{
	CollectionShops,
	CollectionCategories,
	CollectionItems,
	CollectionUsers,
	CollectionOrders,
	CollectionParticipants,
	CollectionLineItems,
}

type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change announces that one record of a collection was mutated.
type Change struct {
	Collection Collection `json:"collection"`
	Op         ChangeOp   `json:"op"`
	ID         string     `json:"id"`
	OrderID    string     `json:"order_id,omitempty"`
}

// ChangeFeed is the live half of the data access port. Subscribers re-read a
// snapshot whenever a change for one of their collections arrives.
type ChangeFeed interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context, collections ...Collection) (<-chan Change, func(), error)
}

type ShopRepository interface {
	CreateShop(ctx context.Context, shop *Shop) (*Shop, error)
	GetShopByID(ctx context.Context, id string) (*Shop, error)
	UpdateShop(ctx context.Context, shop *Shop) (*Shop, error)
	DeleteShop(ctx context.Context, id string) error
	ListShops(ctx context.Context) ([]Shop, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]Category, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *Item) (*Item, error)
	GetItemByID(ctx context.Context, id string) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, filter ItemFilter) ([]Item, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) (*Order, error)
	// DeleteOrder removes the order together with its participants and line items.
	DeleteOrder(ctx context.Context, id string) error
	// ListOrders returns every order, newest first.
	ListOrders(ctx context.Context) ([]Order, error)
}

type ParticipantRepository interface {
	AddParticipant(ctx context.Context, participant *OrderParticipant) (*OrderParticipant, error)
	// RemoveParticipant deletes the (orderID, userID) row. Missing rows yield ErrNotFound.
	RemoveParticipant(ctx context.Context, orderID, userID string) error
	ListParticipants(ctx context.Context, orderID string) ([]OrderParticipant, error)
	ListAllParticipants(ctx context.Context) ([]OrderParticipant, error)
}

type LineItemRepository interface {
	// CreateLineItem returns ErrAlreadyExists when the triple is taken.
	CreateLineItem(ctx context.Context, lineItem *OrderLineItem) (*OrderLineItem, error)
	FindLineItem(ctx context.Context, orderID, userID, itemID string) (*OrderLineItem, error)
	DeleteLineItem(ctx context.Context, id string) error
	ListLineItems(ctx context.Context, orderID string) ([]OrderLineItem, error)
	ListAllLineItems(ctx context.Context) ([]OrderLineItem, error)
}

// Store bundles every repository of the data access port.
type Store interface {
	ShopRepository
	CategoryRepository
	ItemRepository
	UserRepository
	OrderRepository
	ParticipantRepository
	LineItemRepository
}
