package domain

import "sort"

// ParticipantDelta is the set of participant rows to create and delete.
type ParticipantDelta struct {
	ToAdd    []string `json:"to_add"`
	ToRemove []string `json:"to_remove"`
}

func (d ParticipantDelta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// DiffParticipants returns desired minus current as ToAdd and current minus desired as
// ToRemove. Both lists are sorted and free of duplicates.
func DiffParticipants(current, desired []string) ParticipantDelta {
	cur := toSet(current)
	want := toSet(desired)

	delta := ParticipantDelta{ToAdd: []string{}, ToRemove: []string{}}
	for id := range want {
		if !cur[id] {
			delta.ToAdd = append(delta.ToAdd, id)
		}
	}
	for id := range cur {
		if !want[id] {
			delta.ToRemove = append(delta.ToRemove, id)
		}
	}
	sort.Strings(delta.ToAdd)
	sort.Strings(delta.ToRemove)
	return delta
}

// ReconcileParticipants computes the participant changes requested by actorID on
// order. Only the owner may edit participants. The owner is implicit and is left
// out of both lists even when a caller forgets to include it in desired.
func ReconcileParticipants(order Order, actorID string, current, desired []string) (ParticipantDelta, error) {
	if !IsOwner(order, actorID) {
		return ParticipantDelta{}, ErrForbidden
	}
	delta := DiffParticipants(current, desired)
	delta.ToAdd = without(delta.ToAdd, order.UserID)
	delta.ToRemove = without(delta.ToRemove, order.UserID)
	return delta, nil
}

// Apply returns current with the delta applied, sorted.
func (d ParticipantDelta) Apply(current []string) []string {
	set := toSet(current)
	for _, id := range d.ToRemove {
		delete(set, id)
	}
	for _, id := range d.ToAdd {
		set[id] = true
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
