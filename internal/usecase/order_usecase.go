package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
)

type orderUseCase struct {
	store   domain.Store
	feed    domain.ChangeFeed
	loader  *SnapshotLoader
	baseURL string
	log     *logrus.Logger
}

// NewOrderUseCase builds the order workflow. baseURL is the public address
// share links point at.
func NewOrderUseCase(store domain.Store, feed domain.ChangeFeed, baseURL string, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		store:   store,
		feed:    feed,
		loader:  NewSnapshotLoader(store),
		baseURL: baseURL,
		log:     logger,
	}
}

// loadAccessible returns the order and its participants when actorID may see it.
func (uc *orderUseCase) loadAccessible(ctx context.Context, actorID, orderID string) (*domain.Order, []domain.OrderParticipant, error) {
	if actorID == "" {
		return nil, nil, domain.ErrUnauthenticated
	}
	order, err := uc.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := uc.store.ListParticipants(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !domain.CanAccess(*order, participants, actorID) {
		uc.log.Warnf("Use Case: User %s denied access to order %s", actorID, orderID)
		return nil, nil, fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}
	return order, participants, nil
}

// loadOwned returns the order when actorID owns it.
func (uc *orderUseCase) loadOwned(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	order, err := uc.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.IsOwner(*order, actorID) {
		uc.log.Warnf("Use Case: User %s is not the owner of order %s", actorID, orderID)
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}
	return order, nil
}

func (uc *orderUseCase) checkShop(ctx context.Context, shopID string) error {
	if _, err := uc.store.GetShopByID(ctx, shopID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			v := domain.NewValidationError()
			v.Add("shop_id", "does not exist")
			return v
		}
		return err
	}
	return nil
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, actorID string, order *domain.Order) (*domain.Order, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	order.Name = strings.TrimSpace(order.Name)
	order.UserID = actorID
	if err := order.Validate(); err != nil {
		uc.log.Warnf("Use Case: Order creation failed validation for user %s: %v", actorID, err)
		return nil, err
	}
	if err := uc.checkShop(ctx, order.ShopID); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create order '%s' for user %s", order.Name, actorID)
	created, err := uc.store.CreateOrder(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order for user %s: %v", actorID, err)
		return nil, err
	}

	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionOrders, Op: domain.OpCreate, ID: created.ID, OrderID: created.ID})
	uc.log.Infof("Use Case: Order %s created successfully", created.ID)
	return created, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, actorID, orderID string) (*domain.Order, error) {
	order, _, err := uc.loadAccessible(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (uc *orderUseCase) UpdateOrder(ctx context.Context, actorID, orderID string, patch domain.OrderPatch) (*domain.Order, error) {
	order, err := uc.loadOwned(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		order.Name = strings.TrimSpace(*patch.Name)
	}
	shopChanged := patch.ShopID != nil && *patch.ShopID != order.ShopID
	if patch.ShopID != nil {
		order.ShopID = *patch.ShopID
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if shopChanged {
		if err := uc.checkShop(ctx, order.ShopID); err != nil {
			return nil, err
		}
	}

	updated, err := uc.store.UpdateOrder(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update order %s: %v", orderID, err)
		return nil, err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionOrders, Op: domain.OpUpdate, ID: orderID, OrderID: orderID})
	return updated, nil
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, actorID, orderID string) error {
	if _, err := uc.loadOwned(ctx, actorID, orderID); err != nil {
		return err
	}
	if err := uc.store.DeleteOrder(ctx, orderID); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete order %s: %v", orderID, err)
		return err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionOrders, Op: domain.OpDelete, ID: orderID, OrderID: orderID})
	uc.log.Infof("Use Case: Order %s deleted by %s", orderID, actorID)
	return nil
}

func (uc *orderUseCase) ListVisibleOrders(ctx context.Context, actorID string) ([]domain.Order, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	snap, err := uc.loader.LoadVisibility(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load orders for user %s: %v", actorID, err)
		return nil, err
	}
	return domain.VisibleOrders(actorID, snap.Orders, snap.Participants), nil
}

// summaryFor loads a fresh order snapshot and aggregates it for actorID.
func (uc *orderUseCase) summaryFor(ctx context.Context, actorID, orderID string) (*domain.Summary, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	snap, err := uc.loader.LoadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order := snap.Orders[0]
	if !domain.CanAccess(order, snap.Participants, actorID) {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}
	summary := domain.ComputeSummary(order, snap.LineItems, snap.Participants, snap.Items)
	return &summary, nil
}

func (uc *orderUseCase) GetSummary(ctx context.Context, actorID, orderID string) (*domain.Summary, error) {
	summary, err := uc.summaryFor(ctx, actorID, orderID)
	if err != nil {
		uc.log.Warnf("Use Case: Summary of order %s unavailable for %s: %v", orderID, actorID, err)
		return nil, err
	}
	return summary, nil
}

// relevant reports whether change can alter the summary of orderID.
func relevant(change domain.Change, orderID string) bool {
	switch change.Collection {
	case domain.CollectionItems:
		return true
	case domain.CollectionOrders, domain.CollectionParticipants, domain.CollectionLineItems:
		return change.OrderID == orderID || change.ID == orderID
	default:
		return false
	}
}

func (uc *orderUseCase) WatchSummary(ctx context.Context, actorID, orderID string) (<-chan domain.Summary, error) {
	changes, cancel, err := uc.feed.Subscribe(ctx,
		domain.CollectionOrders,
		domain.CollectionParticipants,
		domain.CollectionLineItems,
		domain.CollectionItems,
	)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to subscribe to changes for order %s: %v", orderID, err)
		return nil, err
	}

	first, err := uc.summaryFor(ctx, actorID, orderID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan domain.Summary, 1)
	out <- *first

	go func() {
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				if !relevant(change, orderID) {
					continue
				}
				summary, err := uc.summaryFor(ctx, actorID, orderID)
				if err != nil {
					uc.log.WithFields(logrus.Fields{
						"order_id": orderID,
						"user_id":  actorID,
					}).Infof("Use Case: Summary watch ended: %v", err)
					return
				}
				select {
				case out <- *summary:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (uc *orderUseCase) ListParticipants(ctx context.Context, actorID, orderID string) ([]string, error) {
	order, participants, err := uc.loadAccessible(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	return domain.ParticipantIDs(*order, participants), nil
}

// SetParticipants makes the invited users of the order equal to userIDs. The
// owner stays implicit whether or not userIDs names it.
func (uc *orderUseCase) SetParticipants(ctx context.Context, actorID, orderID string, userIDs []string) (domain.ParticipantDelta, error) {
	if actorID == "" {
		return domain.ParticipantDelta{}, domain.ErrUnauthenticated
	}
	order, err := uc.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.ParticipantDelta{}, err
	}
	participants, err := uc.store.ListParticipants(ctx, orderID)
	if err != nil {
		return domain.ParticipantDelta{}, err
	}
	current := make([]string, 0, len(participants))
	for _, p := range participants {
		current = append(current, p.UserID)
	}

	delta, err := domain.ReconcileParticipants(*order, actorID, current, userIDs)
	if err != nil {
		uc.log.Warnf("Use Case: User %s may not edit participants of order %s", actorID, orderID)
		return domain.ParticipantDelta{}, fmt.Errorf("order %s: %w", orderID, err)
	}

	v := domain.NewValidationError()
	for _, userID := range delta.ToAdd {
		if _, err := uc.store.GetUserByID(ctx, userID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return domain.ParticipantDelta{}, err
			}
			v.Add("user_ids", fmt.Sprintf("unknown user %s", userID))
		}
	}
	if err := v.Err(); err != nil {
		return domain.ParticipantDelta{}, err
	}

	for _, userID := range delta.ToAdd {
		added, err := uc.store.AddParticipant(ctx, &domain.OrderParticipant{OrderID: orderID, UserID: userID})
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			uc.log.Errorf("Use Case: Failed to add user %s to order %s: %v", userID, orderID, err)
			return domain.ParticipantDelta{}, err
		}
		publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionParticipants, Op: domain.OpCreate, ID: added.ID, OrderID: orderID})
	}
	for _, userID := range delta.ToRemove {
		err := uc.store.RemoveParticipant(ctx, orderID, userID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			uc.log.Errorf("Use Case: Failed to remove user %s from order %s: %v", userID, orderID, err)
			return domain.ParticipantDelta{}, err
		}
		publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionParticipants, Op: domain.OpDelete, ID: userID, OrderID: orderID})
	}

	uc.log.Infof("Use Case: Participants of order %s updated (+%d, -%d)", orderID, len(delta.ToAdd), len(delta.ToRemove))
	return delta, nil
}

// AddSelection records that actorID wants itemID. Selecting the same item
// twice keeps a single line item.
func (uc *orderUseCase) AddSelection(ctx context.Context, actorID, orderID, itemID string) error {
	order, _, err := uc.loadAccessible(ctx, actorID, orderID)
	if err != nil {
		return err
	}

	item, err := uc.store.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.ShopID != order.ShopID {
		v := domain.NewValidationError()
		v.Add("item_id", "belongs to another shop")
		return v
	}

	if _, err := uc.store.FindLineItem(ctx, orderID, actorID, itemID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	created, err := uc.store.CreateLineItem(ctx, &domain.OrderLineItem{OrderID: orderID, UserID: actorID, ItemID: itemID})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		uc.log.Errorf("Use Case: Failed to add item %s to order %s for %s: %v", itemID, orderID, actorID, err)
		return err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionLineItems, Op: domain.OpCreate, ID: created.ID, OrderID: orderID})
	return nil
}

// RemoveSelection drops actorID's selection of itemID; a missing selection is not an error.
func (uc *orderUseCase) RemoveSelection(ctx context.Context, actorID, orderID, itemID string) error {
	if _, _, err := uc.loadAccessible(ctx, actorID, orderID); err != nil {
		return err
	}

	li, err := uc.store.FindLineItem(ctx, orderID, actorID, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := uc.store.DeleteLineItem(ctx, li.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		uc.log.Errorf("Use Case: Failed to remove item %s from order %s for %s: %v", itemID, orderID, actorID, err)
		return err
	}
	publish(ctx, uc.feed, uc.log, domain.Change{Collection: domain.CollectionLineItems, Op: domain.OpDelete, ID: li.ID, OrderID: orderID})
	return nil
}

func (uc *orderUseCase) ShareLink(ctx context.Context, actorID, orderID string) (string, error) {
	if _, _, err := uc.loadAccessible(ctx, actorID, orderID); err != nil {
		return "", err
	}
	return domain.BuildShareLink(uc.baseURL, orderID), nil
}
