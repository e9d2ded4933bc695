package workspace

import (
	"sync"

	"github.com/dshills/editstate/internal/config/notify"
)

// subscriptions tracks settings store subscriptions for teardown.
type subscriptions struct {
	mu   sync.Mutex
	subs []*notify.Subscription
}

func newSubscriptions() *subscriptions {
	return &subscriptions{}
}

func (s *subscriptions) add(sub *notify.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

func (s *subscriptions) cancel() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
