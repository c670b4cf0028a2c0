package models

// DeclinedPairs is an append-only, process-lifetime set of confirmation keys
// whose partial fill the larger party declined (or let time out) after the
// smaller party had already declined or timed out. Membership suppresses
// re-opening a PendingConfirmation for that exact (asset, bidOrderId,
// offerOrderId) triple (spec invariant 6). Not safe for concurrent use; the
// matching engine serializes all access behind its own lock.
type DeclinedPairs struct {
	keys map[string]struct{}
}

func NewDeclinedPairs() *DeclinedPairs {
	return &DeclinedPairs{keys: make(map[string]struct{})}
}

func (d *DeclinedPairs) Add(key ConfirmationKey) {
	d.keys[key.String()] = struct{}{}
}

func (d *DeclinedPairs) Contains(key ConfirmationKey) bool {
	_, ok := d.keys[key.String()]
	return ok
}

func (d *DeclinedPairs) Len() int {
	return len(d.keys)
}
