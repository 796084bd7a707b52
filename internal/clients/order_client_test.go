package clients

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"grouporder/internal/delivery"
	ordergrpc "grouporder/internal/delivery/grpc"
	"grouporder/internal/domain"
	"grouporder/internal/feed"
	"grouporder/internal/repository"
	"grouporder/internal/session"
	"grouporder/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type grpcFixture struct {
	lis     *bufconn.Listener
	log     *logrus.Logger
	auth    domain.AuthUseCase
	orders  domain.OrderUseCase
	orderID string
	itemID  string
	owner   string
	guest   string
	outside string
}

func login(t *testing.T, ctx context.Context, auth domain.AuthUseCase, email string) (string, string) {
	t.Helper()
	user, err := auth.Register(ctx, email, "Secret123")
	require.NoError(t, err)
	token, _, err := auth.Login(ctx, email, "Secret123")
	require.NoError(t, err)
	return token, user.ID
}

func newGRPCFixture(t *testing.T) *grpcFixture {
	t.Helper()
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore(logger)
	changes := feed.NewLocalFeed(logger)
	auth := usecase.NewAuthUseCase(store, session.NewMemoryStore(time.Hour), changes, logger)
	catalog := usecase.NewCatalogUseCase(store, changes, logger)
	orders := usecase.NewOrderUseCase(store, changes, "https://lunch.example.com", logger)

	f := &grpcFixture{log: logger, auth: auth, orders: orders}
	var ownerID, guestID string
	f.owner, ownerID = login(t, ctx, auth, "owner@example.com")
	f.guest, guestID = login(t, ctx, auth, "guest@example.com")
	f.outside, _ = login(t, ctx, auth, "outsider@example.com")

	shop, err := catalog.CreateShop(ctx, &domain.Shop{Name: "Cafe", Phone: "555-0100"})
	require.NoError(t, err)
	category, err := catalog.CreateCategory(ctx, &domain.Category{Name: "Drinks"})
	require.NoError(t, err)
	item, err := catalog.CreateItem(ctx, &domain.Item{Name: "Latte", Price: 15000, ShopID: shop.ID, CategoryID: category.ID})
	require.NoError(t, err)
	order, err := orders.CreateOrder(ctx, ownerID, &domain.Order{Name: "Friday", ShopID: shop.ID})
	require.NoError(t, err)
	_, err = orders.SetParticipants(ctx, ownerID, order.ID, []string{guestID})
	require.NoError(t, err)
	require.NoError(t, orders.AddSelection(ctx, guestID, order.ID, item.ID))

	f.orderID = order.ID
	f.itemID = item.ID

	f.lis = bufconn.Listen(1 << 20)
	server := ordergrpc.NewServer(orders, auth, logger)
	go func() {
		_ = server.Serve(f.lis)
	}()
	t.Cleanup(server.Stop)
	return f
}

func (f *grpcFixture) client(t *testing.T, token string) OrderServiceClient {
	t.Helper()
	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return f.lis.DialContext(ctx)
	})
	c, err := NewOrderServiceClient("passthrough:///bufnet", token, f.log, dialer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOrderClient_GetSummary(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	view, err := f.client(t, f.owner).GetSummary(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, f.orderID, view.OrderID)
	assert.Equal(t, int64(15000), view.GrandTotal)
	assert.Equal(t, "15,000", view.GrandTotalText)
	require.Len(t, view.Participants, 2)
	assert.True(t, view.Participants[0].IsOwner)
	assert.Equal(t, "owner@example.com", view.Participants[0].Email)
	assert.Equal(t, []string{"Latte"}, view.Participants[1].ItemNames)
	require.Len(t, view.Roster, 1)
	assert.Equal(t, 1, view.Roster[0].Count)
}

func TestOrderClient_ListOrdersAndShareLink(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orders, err := f.client(t, f.guest).ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, f.orderID, orders[0].ID)

	orders, err = f.client(t, f.outside).ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	link, err := f.client(t, f.guest).GetShareLink(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, "https://lunch.example.com/#/order/"+f.orderID, link)
}

func TestOrderClient_StatusCodes(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		token   string
		orderID string
		code    codes.Code
	}{
		{"missing token", "", f.orderID, codes.Unauthenticated},
		{"unknown token", "bogus", f.orderID, codes.Unauthenticated},
		{"outsider", f.outside, f.orderID, codes.PermissionDenied},
		{"unknown order", f.owner, "missing", codes.NotFound},
		{"empty order id", f.owner, "", codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.client(t, tt.token).GetSummary(ctx, tt.orderID)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err), err.Error())
		})
	}
}

var errDone = errors.New("done")

func TestOrderClient_WatchSummary(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ownerID, err := f.auth.Authenticate(ctx, f.owner)
	require.NoError(t, err)

	var totals []int64
	err = f.client(t, f.owner).WatchSummary(ctx, f.orderID, func(view delivery.SummaryView) error {
		totals = append(totals, view.GrandTotal)
		if len(totals) == 1 {
			return f.orders.AddSelection(ctx, ownerID, f.orderID, f.itemID)
		}
		return errDone
	})
	require.ErrorIs(t, err, errDone)
	assert.Equal(t, []int64{15000, 30000}, totals)
}

func TestOrderClient_WatchSummaryForbidden(t *testing.T) {
	f := newGRPCFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := f.client(t, f.outside).WatchSummary(ctx, f.orderID, func(delivery.SummaryView) error {
		t.Fatal("outsider received a summary")
		return nil
	})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
