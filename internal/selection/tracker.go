// internal/selection/tracker.go
package selection

import "sync"

// Tracker holds the set of donor ids an operator has picked for the next
// bulk action. IDs come back in the order they were first added.
type Tracker struct {
	mu    sync.Mutex
	order []string
	set   map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{set: map[string]struct{}{}}
}

// Toggle flips membership of id and reports whether it is now selected.
func (t *Tracker) Toggle(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.set[id]; ok {
		delete(t.set, id)
		for i, v := range t.order {
			if v == id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
		return false
	}
	t.set[id] = struct{}{}
	t.order = append(t.order, id)
	return true
}

// SelectAll replaces the selection with exactly ids, dropping duplicates.
func (t *Tracker) SelectAll(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.set = make(map[string]struct{}, len(ids))
	t.order = make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := t.set[id]; ok {
			continue
		}
		t.set[id] = struct{}{}
		t.order = append(t.order, id)
	}
}

func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.set = map[string]struct{}{}
	t.order = nil
}

// IDs returns a copy of the selection in iteration order.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string{}, t.order...)
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.order)
}

func (t *Tracker) Contains(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.set[id]
	return ok
}
