package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"grouporder/config"
	"grouporder/internal/delivery"
	"grouporder/internal/domain"
	"grouporder/internal/feed"
	"grouporder/internal/repository"
	"grouporder/internal/session"
	"grouporder/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleCatalog = `
categories: [Drinks, Bakery]
shops:
  - name: Cafe
    phone: "555-0100"
    items:
      - {name: Latte, price: 15000, category: Drinks}
      - {name: Cake, price: 30000, category: Bakery}
  - name: Corner
    phone: "555-0199"
    items:
      - {name: Tea, price: 25000, category: Drinks}
`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:   config.DriverMemory,
		HTTPPort:      "127.0.0.1:0",
		GrpcPort:      "127.0.0.1:0",
		PublicBaseURL: "http://localhost:8080",
		SessionTTL:    time.Hour,
		RedisPrefix:   "test",
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed", "summary", "export"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--log-level", "error"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	logger := quietLogger()
	b, err := openBackend(ctx, memoryConfig(), logger)
	require.NoError(t, err)
	defer b.Close(logger)
	catalog := b.useCases(memoryConfig(), logger).Catalog

	file, err := parseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	res, err := seedCatalog(ctx, catalog, file, logger)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Categories: 2, Shops: 2, Items: 3}, res)

	items, err := catalog.ListItems(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Latte", items[0].Name)
	assert.Equal(t, int64(15000), items[0].Price)

	res, err = seedCatalog(ctx, catalog, file, logger)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Categories, "existing categories are reused")
	assert.Equal(t, 3, res.Items)
}

func TestSeedCatalog_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	logger := quietLogger()
	b, err := openBackend(ctx, memoryConfig(), logger)
	require.NoError(t, err)
	defer b.Close(logger)

	file := &catalogFile{Shops: []catalogShop{{
		Name:  "Cafe",
		Phone: "1",
		Items: []catalogItem{{Name: "Latte", Price: 1, Category: "Drinks"}},
	}}}
	_, err = seedCatalog(ctx, b.useCases(memoryConfig(), logger).Catalog, file, logger)
	assert.ErrorContains(t, err, `unknown category "Drinks"`)
}

func TestExportSnapshot(t *testing.T) {
	ctx := context.Background()
	logger := quietLogger()
	b, err := openBackend(ctx, memoryConfig(), logger)
	require.NoError(t, err)
	defer b.Close(logger)
	uc := b.useCases(memoryConfig(), logger)

	file, err := parseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	_, err = seedCatalog(ctx, uc.Catalog, file, logger)
	require.NoError(t, err)

	owner, err := uc.Auth.Register(ctx, "owner@example.com", "Secret123")
	require.NoError(t, err)
	shops, err := uc.Catalog.ListShops(ctx)
	require.NoError(t, err)
	items, err := uc.Catalog.ListItems(ctx, domain.ItemFilter{ShopID: shops[0].ID})
	require.NoError(t, err)
	order, err := uc.Orders.CreateOrder(ctx, owner.ID, &domain.Order{Name: "Friday", ShopID: shops[0].ID})
	require.NoError(t, err)
	require.NoError(t, uc.Orders.AddSelection(ctx, owner.ID, order.ID, items[0].ID))

	snap, err := usecase.NewSnapshotLoader(b.store).Load(ctx)
	require.NoError(t, err)
	exported := exportSnapshot(snap)

	assert.Equal(t, file.Categories, exported.Categories)
	assert.Equal(t, file.Shops, exported.Shops)
	require.Len(t, exported.Orders, 1)
	assert.Equal(t, exportOrder{
		Name:  "Friday",
		Shop:  "Cafe",
		Owner: "owner@example.com",
		Participants: []exportParticipant{
			{User: "owner@example.com", Items: []string{"Latte"}, Subtotal: 15000},
		},
		GrandTotal: 15000,
	}, exported.Orders[0])

	data, err := yaml.Marshal(exported)
	require.NoError(t, err)
	reparsed, err := parseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, file, reparsed, "export output seeds the same catalog")
}

func TestExportCmd_EmptyStore(t *testing.T) {
	var out bytes.Buffer
	cmd := newExportCmd(&app{log: quietLogger(), cfg: memoryConfig()})
	cmd.SetArgs([]string{})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.Execute())

	file, err := parseCatalog(out.Bytes())
	require.NoError(t, err)
	assert.Empty(t, file.Shops)
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := parseCatalog([]byte("shops: {name: ["))
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	logger := quietLogger()

	b, err := openBackend(ctx, memoryConfig(), logger)
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryStore{}, b.store)
	assert.IsType(t, &feed.LocalFeed{}, b.feed)
	assert.IsType(t, &session.MemoryStore{}, b.sessions)
	b.Close(logger)

	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	b, err = openBackend(ctx, cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &feed.RedisFeed{}, b.feed)
	assert.IsType(t, &session.RedisStore{}, b.sessions)
	b.Close(logger)

	cfg.RedisURL = "not a url"
	_, err = openBackend(ctx, cfg, logger)
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestServeStopsOnCancel(t *testing.T) {
	a := &app{log: quietLogger(), cfg: memoryConfig()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestPrintSummary(t *testing.T) {
	view := delivery.NewSummaryView(domain.Summary{
		OrderID: "o1",
		Participants: []domain.ParticipantSummary{
			{UserID: "u1", IsOwner: true, ItemNames: []string{"Latte"}, Subtotal: 30000},
			{UserID: "u2", ItemNames: []string{"Latte", "Tea"}, Subtotal: 55000},
		},
		Roster: []domain.RosterEntry{
			{ItemID: "i1", ItemName: "Latte", Price: 15000, Count: 2},
			{ItemID: "i2", ItemName: "Tea", Price: 25000, Count: 1},
		},
		GrandTotal: 85000,
	}, map[string]string{"u1": "owner@example.com"})

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, view))
	out := buf.String()
	assert.Contains(t, out, "Order o1")
	assert.Contains(t, out, "owner@example.com (owner)")
	assert.Contains(t, out, "u2")
	assert.Contains(t, out, "Latte, Tea")
	assert.Contains(t, out, "55,000")
	assert.Contains(t, out, "85,000")
	assert.Contains(t, out, "Roster: Latte x2, Tea x1")
}
