package domain

// Snapshot is the current in-memory view of every collection. It is rebuilt on
// each change notification and passed by value into the pure computations.
type Snapshot struct {
	Shops        []Shop
	Categories   []Category
	Items        []Item
	Users        []User
	Orders       []Order
	Participants []OrderParticipant
	LineItems    []OrderLineItem
}

func (s Snapshot) Order(id string) (Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Summary computes the summary of one order of the snapshot.
func (s Snapshot) Summary(orderID string) (Summary, bool) {
	o, ok := s.Order(orderID)
	if !ok {
		return Summary{}, false
	}
	return ComputeSummary(o, s.LineItems, s.Participants, s.Items), true
}

// UserEmails indexes user emails by id.
func (s Snapshot) UserEmails() map[string]string {
	emails := make(map[string]string, len(s.Users))
	for _, u := range s.Users {
		emails[u.ID] = u.Email
	}
	return emails
}
