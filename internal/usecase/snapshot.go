package usecase

import (
	"context"

	"grouporder/internal/domain"

	"golang.org/x/sync/errgroup"
)

// SnapshotLoader reads collections concurrently into a domain.Snapshot.
type SnapshotLoader struct {
	store domain.Store
}

func NewSnapshotLoader(store domain.Store) *SnapshotLoader {
	return &SnapshotLoader{store: store}
}

// Load reads every collection.
func (l *SnapshotLoader) Load(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Shops, err = l.store.ListShops(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Categories, err = l.store.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Items, err = l.store.ListItems(gctx, domain.ItemFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.Users, err = l.store.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Orders, err = l.store.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Participants, err = l.store.ListAllParticipants(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.LineItems, err = l.store.ListAllLineItems(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, domain.Upstream("load snapshot", err)
	}
	return snap, nil
}

// LoadOrder reads one order together with what its summary needs: its
// participants, its line items and the items of its shop.
func (l *SnapshotLoader) LoadOrder(ctx context.Context, orderID string) (domain.Snapshot, error) {
	order, err := l.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{Orders: []domain.Order{*order}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Participants, err = l.store.ListParticipants(gctx, orderID)
		return err
	})
	g.Go(func() (err error) {
		snap.LineItems, err = l.store.ListLineItems(gctx, orderID)
		return err
	})
	g.Go(func() (err error) {
		snap.Items, err = l.store.ListItems(gctx, domain.ItemFilter{ShopID: order.ShopID})
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, domain.Upstream("load order snapshot", err)
	}
	return snap, nil
}

// LoadVisibility reads orders and participants, enough to decide who sees what.
func (l *SnapshotLoader) LoadVisibility(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Orders, err = l.store.ListOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Participants, err = l.store.ListAllParticipants(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, domain.Upstream("load orders", err)
	}
	return snap, nil
}
