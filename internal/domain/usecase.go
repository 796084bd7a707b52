package domain

import "context"

type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (*User, error)
	// Login returns a session token for valid credentials and ErrUnauthenticated otherwise.
	Login(ctx context.Context, email, password string) (string, *User, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to the current user id.
	Authenticate(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type CatalogUseCase interface {
	CreateShop(ctx context.Context, shop *Shop) (*Shop, error)
	GetShop(ctx context.Context, id string) (*Shop, error)
	UpdateShop(ctx context.Context, shop *Shop) (*Shop, error)
	DeleteShop(ctx context.Context, id string) error
	ListShops(ctx context.Context) ([]Shop, error)

	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]Category, error)

	CreateItem(ctx context.Context, item *Item) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, filter ItemFilter) ([]Item, error)
}

// OrderUseCase operations all act on behalf of actorID, the authenticated user.
type OrderUseCase interface {
	CreateOrder(ctx context.Context, actorID string, order *Order) (*Order, error)
	GetOrder(ctx context.Context, actorID, orderID string) (*Order, error)
	UpdateOrder(ctx context.Context, actorID, orderID string, patch OrderPatch) (*Order, error)
	DeleteOrder(ctx context.Context, actorID, orderID string) error
	ListVisibleOrders(ctx context.Context, actorID string) ([]Order, error)

	GetSummary(ctx context.Context, actorID, orderID string) (*Summary, error)
	// WatchSummary emits the current summary, then a fresh one after every
	// relevant change. The channel closes when ctx ends or the order goes away.
	WatchSummary(ctx context.Context, actorID, orderID string) (<-chan Summary, error)

	ListParticipants(ctx context.Context, actorID, orderID string) ([]string, error)
	SetParticipants(ctx context.Context, actorID, orderID string, userIDs []string) (ParticipantDelta, error)

	AddSelection(ctx context.Context, actorID, orderID, itemID string) error
	RemoveSelection(ctx context.Context, actorID, orderID, itemID string) error

	ShareLink(ctx context.Context, actorID, orderID string) (string, error)
}
