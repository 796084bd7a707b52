package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latteFixture() (Order, []OrderParticipant, []Item, []OrderLineItem) {
	order := Order{ID: "o1", ShopID: "s1", UserID: "u1"}
	participants := []OrderParticipant{
		{ID: "p1", OrderID: "o1", UserID: "u1"},
		{ID: "p2", OrderID: "o1", UserID: "u2"},
	}
	items := []Item{
		{ID: "i1", ShopID: "s1", Price: 30000, Name: "Latte"},
		{ID: "i2", ShopID: "s1", Price: 25000, Name: "Tea"},
	}
	lineItems := []OrderLineItem{
		{ID: "l1", OrderID: "o1", UserID: "u1", ItemID: "i1"},
		{ID: "l2", OrderID: "o1", UserID: "u2", ItemID: "i1"},
		{ID: "l3", OrderID: "o1", UserID: "u2", ItemID: "i2"},
	}
	return order, participants, items, lineItems
}

func TestComputeSummary_SharedOrder(t *testing.T) {
	order, participants, items, lineItems := latteFixture()

	got := ComputeSummary(order, lineItems, participants, items)

	want := Summary{
		OrderID: "o1",
		Participants: []ParticipantSummary{
			{UserID: "u1", IsOwner: true, ItemIDs: []string{"i1"}, ItemNames: []string{"Latte"}, Subtotal: 30000},
			{UserID: "u2", ItemIDs: []string{"i1", "i2"}, ItemNames: []string{"Latte", "Tea"}, Subtotal: 55000},
		},
		Roster: []RosterEntry{
			{ItemID: "i1", ItemName: "Latte", Price: 30000, Count: 2},
			{ItemID: "i2", ItemName: "Tea", Price: 25000, Count: 1},
		},
		GrandTotal: 85000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeSummary mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeSummary_GrandTotalMatchesSubtotals(t *testing.T) {
	order, participants, items, lineItems := latteFixture()
	items = append(items,
		Item{ID: "i3", ShopID: "s2", Price: 99000, Name: "Other shop"},
		Item{ID: "i4", ShopID: "s1", Price: 0, Name: "Water"},
	)

	tests := []struct {
		name      string
		lineItems []OrderLineItem
	}{
		{name: "no selections", lineItems: nil},
		{name: "shared selections", lineItems: lineItems},
		{name: "cross shop selection ignored", lineItems: append(append([]OrderLineItem{}, lineItems...),
			OrderLineItem{ID: "x", OrderID: "o1", UserID: "u1", ItemID: "i3"})},
		{name: "unknown item ignored", lineItems: append(append([]OrderLineItem{}, lineItems...),
			OrderLineItem{ID: "y", OrderID: "o1", UserID: "u2", ItemID: "gone"})},
		{name: "duplicate rows counted once", lineItems: append(append([]OrderLineItem{}, lineItems...),
			OrderLineItem{ID: "z", OrderID: "o1", UserID: "u2", ItemID: "i2"})},
		{name: "free item", lineItems: []OrderLineItem{{ID: "w", OrderID: "o1", UserID: "u1", ItemID: "i4"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeSummary(order, tt.lineItems, participants, items)
			var sum int64
			for _, p := range s.Participants {
				sum += p.Subtotal
			}
			assert.Equal(t, sum, s.GrandTotal)
			assert.GreaterOrEqual(t, s.GrandTotal, int64(0))
		})
	}
}

func TestComputeSummary_ExcludesOutsiders(t *testing.T) {
	order, participants, items, lineItems := latteFixture()
	lineItems = append(lineItems,
		OrderLineItem{ID: "l9", OrderID: "o1", UserID: "intruder", ItemID: "i2"},
		OrderLineItem{ID: "l10", OrderID: "o2", UserID: "u2", ItemID: "i2"},
	)

	s := ComputeSummary(order, lineItems, participants, items)

	for _, p := range s.Participants {
		assert.NotEqual(t, "intruder", p.UserID)
	}
	_, ok := s.Subtotal("intruder")
	assert.False(t, ok)
	assert.Equal(t, int64(85000), s.GrandTotal)
}

func TestComputeSummary_OwnerOnly(t *testing.T) {
	order := Order{ID: "o1", ShopID: "s1", UserID: "u1"}
	items := []Item{{ID: "i1", ShopID: "s1", Price: 10, Name: "Bun"}}

	s := ComputeSummary(order, nil, nil, items)

	require.Len(t, s.Participants, 1)
	assert.Equal(t, "u1", s.Participants[0].UserID)
	assert.True(t, s.Participants[0].IsOwner)
	assert.Empty(t, s.Roster)
	assert.Zero(t, s.GrandTotal)
}

func TestComputeSummary_IsRepeatable(t *testing.T) {
	order, participants, items, lineItems := latteFixture()

	first := ComputeSummary(order, lineItems, participants, items)
	second := ComputeSummary(order, lineItems, participants, items)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestVisibleOrders(t *testing.T) {
	orders := []Order{
		{ID: "o3", UserID: "u9"},
		{ID: "o2", UserID: "u1"},
		{ID: "o1", UserID: "u9"},
	}
	participants := []OrderParticipant{{OrderID: "o1", UserID: "u1"}}

	got := VisibleOrders("u1", orders, participants)
	require.Len(t, got, 2)
	assert.Equal(t, "o2", got[0].ID)
	assert.Equal(t, "o1", got[1].ID)

	assert.Empty(t, VisibleOrders("nobody", orders, participants))
	assert.Empty(t, VisibleOrders("", orders, participants))
}

func TestCanAccess(t *testing.T) {
	order, participants, _, _ := latteFixture()

	assert.True(t, CanAccess(order, participants, "u1"))
	assert.True(t, CanAccess(order, participants, "u2"))
	assert.False(t, CanAccess(order, participants, "u3"))
	assert.False(t, CanAccess(order, participants, ""))
	assert.True(t, IsOwner(order, "u1"))
	assert.False(t, IsOwner(order, "u2"))
}

func TestSnapshotSummary(t *testing.T) {
	order, participants, items, lineItems := latteFixture()
	snap := Snapshot{Orders: []Order{order}, Participants: participants, Items: items, LineItems: lineItems}

	s, ok := snap.Summary("o1")
	require.True(t, ok)
	assert.Equal(t, int64(85000), s.GrandTotal)

	_, ok = snap.Summary("missing")
	assert.False(t, ok)
}
