package usecase

import (
	"context"
	"errors"
	"strings"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
)

type catalogUseCase struct {
	store domain.Store
	feed  domain.ChangeFeed
	log   *logrus.Logger
}

func NewCatalogUseCase(store domain.Store, feed domain.ChangeFeed, logger *logrus.Logger) domain.CatalogUseCase {
	return &catalogUseCase{
		store: store,
		feed:  feed,
		log:   logger,
	}
}

// --- Shops ---

func (uc *catalogUseCase) CreateShop(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	shop.Name = strings.TrimSpace(shop.Name)
	shop.Phone = strings.TrimSpace(shop.Phone)
	if err := shop.Validate(); err != nil {
		uc.log.Warnf("Use Case: Rejected shop '%s': %v", shop.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create shop '%s'", shop.Name)
	created, err := uc.store.CreateShop(ctx, shop)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create shop '%s': %v", shop.Name, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionShops, Op: domain.OpCreate, ID: created.ID})
	return created, nil
}

func (uc *catalogUseCase) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	return uc.store.GetShopByID(ctx, id)
}

func (uc *catalogUseCase) UpdateShop(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	shop.Name = strings.TrimSpace(shop.Name)
	shop.Phone = strings.TrimSpace(shop.Phone)
	if err := shop.Validate(); err != nil {
		uc.log.Warnf("Use Case: Rejected update of shop %s: %v", shop.ID, err)
		return nil, err
	}
	updated, err := uc.store.UpdateShop(ctx, shop)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update shop %s: %v", shop.ID, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionShops, Op: domain.OpUpdate, ID: updated.ID})
	return updated, nil
}

func (uc *catalogUseCase) DeleteShop(ctx context.Context, id string) error {
	if err := uc.store.DeleteShop(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete shop %s: %v", id, err)
		return err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionShops, Op: domain.OpDelete, ID: id})
	return nil
}

func (uc *catalogUseCase) ListShops(ctx context.Context) ([]domain.Shop, error) {
	return uc.store.ListShops(ctx)
}

// --- Categories ---

func (uc *catalogUseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if err := category.Validate(); err != nil {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create category '%s'", category.Name)
	created, err := uc.store.CreateCategory(ctx, category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", category.Name, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionCategories, Op: domain.OpCreate, ID: created.ID})
	return created, nil
}

func (uc *catalogUseCase) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return uc.store.GetCategoryByID(ctx, id)
}

func (uc *catalogUseCase) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if err := category.Validate(); err != nil {
		return nil, err
	}
	updated, err := uc.store.UpdateCategory(ctx, category)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to update category %s: %v", category.ID, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionCategories, Op: domain.OpUpdate, ID: updated.ID})
	return updated, nil
}

func (uc *catalogUseCase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.store.DeleteCategory(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category %s: %v", id, err)
		return err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionCategories, Op: domain.OpDelete, ID: id})
	return nil
}

func (uc *catalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.store.ListCategories(ctx)
}

// --- Items ---

// checkItemReferences reports unknown shop and category ids as field errors.
func (uc *catalogUseCase) checkItemReferences(ctx context.Context, item *domain.Item) error {
	v := domain.NewValidationError()
	if _, err := uc.store.GetShopByID(ctx, item.ShopID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		v.Add("shop_id", "does not exist")
	}
	if _, err := uc.store.GetCategoryByID(ctx, item.CategoryID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		v.Add("category_id", "does not exist")
	}
	return v.Err()
}

func (uc *catalogUseCase) CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		uc.log.Warnf("Use Case: Rejected item '%s': %v", item.Name, err)
		return nil, err
	}
	if err := uc.checkItemReferences(ctx, item); err != nil {
		uc.log.Warnf("Use Case: Item '%s' references are invalid: %v", item.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create item '%s'", item.Name)
	created, err := uc.store.CreateItem(ctx, item)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create item '%s': %v", item.Name, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionItems, Op: domain.OpCreate, ID: created.ID})
	uc.log.Infof("Use Case: Item '%s' created successfully with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *catalogUseCase) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return uc.store.GetItemByID(ctx, id)
}

func (uc *catalogUseCase) UpdateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.store.GetItemByID(ctx, item.ID); err != nil {
		uc.log.Warnf("Use Case: Item ID %s not found for update: %v", item.ID, err)
		return nil, err
	}
	if err := uc.checkItemReferences(ctx, item); err != nil {
		return nil, err
	}
	updated, err := uc.store.UpdateItem(ctx, item)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update item %s: %v", item.ID, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionItems, Op: domain.OpUpdate, ID: updated.ID})
	return updated, nil
}

func (uc *catalogUseCase) DeleteItem(ctx context.Context, id string) error {
	if err := uc.store.DeleteItem(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete item %s: %v", id, err)
		return err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionItems, Op: domain.OpDelete, ID: id})
	return nil
}

func (uc *catalogUseCase) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	return uc.store.ListItems(ctx, filter)
}
