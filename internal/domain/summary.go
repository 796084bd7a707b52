package domain

// ParticipantSummary is one row of the order table: who ordered what and how much it costs.
type ParticipantSummary struct {
	UserID    string   `json:"user_id"`
	IsOwner   bool     `json:"is_owner"`
	ItemIDs   []string `json:"item_ids"`
	ItemNames []string `json:"item_names"`
	Subtotal  int64    `json:"subtotal"`
}

// RosterEntry counts how many participants selected one item.
type RosterEntry struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Price    int64  `json:"price"`
	Count    int    `json:"count"`
}

type Summary struct {
	OrderID      string               `json:"order_id"`
	Participants []ParticipantSummary `json:"participants"`
	Roster       []RosterEntry        `json:"roster"`
	GrandTotal   int64                `json:"grand_total"`
}

// ParticipantIDs returns the owner followed by the invited users of the order,
// in snapshot order and without duplicates.
func ParticipantIDs(order Order, participants []OrderParticipant) []string {
	ids := []string{order.UserID}
	seen := map[string]bool{order.UserID: true}
	for _, p := range participants {
		if p.OrderID != order.ID || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		ids = append(ids, p.UserID)
	}
	return ids
}

// ComputeSummary aggregates the selections of an order. Line items of users who are
// not participants, and line items pointing at items missing from the snapshot or
// sold by another shop, are not counted. GrandTotal sums per selection, so an item
// chosen by two participants is paid twice.
func ComputeSummary(order Order, lineItems []OrderLineItem, participants []OrderParticipant, items []Item) Summary {
	members := ParticipantIDs(order, participants)
	isMember := make(map[string]bool, len(members))
	for _, id := range members {
		isMember[id] = true
	}

	// user -> item -> selected
	selected := make(map[string]map[string]bool, len(members))
	counts := make(map[string]int)
	for _, li := range lineItems {
		if li.OrderID != order.ID || !isMember[li.UserID] {
			continue
		}
		if selected[li.UserID] == nil {
			selected[li.UserID] = make(map[string]bool)
		}
		if selected[li.UserID][li.ItemID] {
			continue
		}
		selected[li.UserID][li.ItemID] = true
		counts[li.ItemID]++
	}

	summary := Summary{
		OrderID:      order.ID,
		Participants: make([]ParticipantSummary, 0, len(members)),
		Roster:       []RosterEntry{},
	}

	for _, userID := range members {
		ps := ParticipantSummary{
			UserID:    userID,
			IsOwner:   userID == order.UserID,
			ItemIDs:   []string{},
			ItemNames: []string{},
		}
		for _, it := range items {
			if it.ShopID != order.ShopID || !selected[userID][it.ID] {
				continue
			}
			ps.ItemIDs = append(ps.ItemIDs, it.ID)
			ps.ItemNames = append(ps.ItemNames, it.Name)
			ps.Subtotal += it.Price
		}
		summary.Participants = append(summary.Participants, ps)
	}

	for _, it := range items {
		n := counts[it.ID]
		if it.ShopID != order.ShopID || n == 0 {
			continue
		}
		summary.Roster = append(summary.Roster, RosterEntry{
			ItemID:   it.ID,
			ItemName: it.Name,
			Price:    it.Price,
			Count:    n,
		})
		summary.GrandTotal += it.Price * int64(n)
	}

	return summary
}

// Subtotal returns the subtotal of userID, or false when the user takes no part in the order.
func (s Summary) Subtotal(userID string) (int64, bool) {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return p.Subtotal, true
		}
	}
	return 0, false
}

func IsOwner(order Order, userID string) bool {
	return userID != "" && order.UserID == userID
}

// CanAccess reports whether userID owns or participates in the order.
func CanAccess(order Order, participants []OrderParticipant, userID string) bool {
	if userID == "" {
		return false
	}
	if order.UserID == userID {
		return true
	}
	for _, p := range participants {
		if p.OrderID == order.ID && p.UserID == userID {
			return true
		}
	}
	return false
}

// VisibleOrders keeps the orders userID owns or participates in, preserving order.
func VisibleOrders(userID string, orders []Order, participants []OrderParticipant) []Order {
	joined := make(map[string]bool)
	for _, p := range participants {
		if p.UserID == userID {
			joined[p.OrderID] = true
		}
	}
	visible := make([]Order, 0, len(orders))
	for _, o := range orders {
		if userID != "" && (o.UserID == userID || joined[o.ID]) {
			visible = append(visible, o)
		}
	}
	return visible
}
