package flow

import "sync"

// Registry tracks the active booking dialog per chat. A chat has at most
// one dialog at a time.
type Registry struct {
	mu      sync.Mutex
	quoters map[int64]*Quoter
}

func NewRegistry() *Registry {
	return &Registry{quoters: make(map[int64]*Quoter)}
}

func (r *Registry) Get(chatID int64) *Quoter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quoters[chatID]
}

// Put installs the chat's dialog, closing any previous one.
func (r *Registry) Put(chatID int64, q *Quoter) {
	r.mu.Lock()
	prev := r.quoters[chatID]
	r.quoters[chatID] = q
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (r *Registry) Remove(chatID int64) {
	r.mu.Lock()
	q := r.quoters[chatID]
	delete(r.quoters, chatID)
	r.mu.Unlock()

	if q != nil {
		q.Close()
	}
}
