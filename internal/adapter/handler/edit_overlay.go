package handler

import "sync"

// EditOverlay stashes unsaved UI edit state per pending action, keyed by
// action id. Presentation concern only: drafts never touch the store and are
// lost on restart, which is the intended lifetime of an unsaved edit.
type EditOverlay struct {
	mu     sync.RWMutex
	drafts map[string]map[string]interface{}
}

// NewEditOverlay creates an empty overlay.
func NewEditOverlay() *EditOverlay {
	return &EditOverlay{drafts: make(map[string]map[string]interface{})}
}

// Put stores the draft for an action, replacing any previous one.
func (o *EditOverlay) Put(id string, fields map[string]interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drafts[id] = fields
}

// Get returns the draft for an action, if any.
func (o *EditOverlay) Get(id string) (map[string]interface{}, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fields, ok := o.drafts[id]
	return fields, ok
}

// Has reports whether a draft exists for an action.
func (o *EditOverlay) Has(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.drafts[id]
	return ok
}

// Discard drops the draft for an action. Called after a save or an explicit
// cancel.
func (o *EditOverlay) Discard(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.drafts, id)
}
