// Package realtime fans committed project changes out to live subscribers.
package realtime

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"listing-reel-backend/internal/metrics"
)

var ErrFilterMismatch = errors.New("subscription key already registered with a different filter")

// Hub delivers every published event to each subscription whose filter
// matches. Publish never blocks: each subscription buffers without bound and
// a dedicated goroutine drains the buffer into Events in publish order.
type Hub struct {
	mu   sync.Mutex
	subs map[string]*Subscription
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]*Subscription),
		log:  log,
	}
}

type Subscription struct {
	key    string
	filter Filter
	out    chan ChangeEvent

	mu      sync.Mutex
	pending []ChangeEvent
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

// Events yields matching changes. It is closed after Unsubscribe.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.out
}

func (s *Subscription) Key() string {
	return s.key
}

func (s *Subscription) Filter() Filter {
	return s.filter
}

// Subscribe registers key with filter. Subscribing again with the same key
// and filter returns the existing subscription.
func (h *Hub) Subscribe(key string, filter Filter) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.subs[key]; ok {
		if existing.filter != filter {
			return nil, ErrFilterMismatch
		}
		return existing, nil
	}

	s := &Subscription{
		key:    key,
		filter: filter,
		out:    make(chan ChangeEvent),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.subs[key] = s
	metrics.BusSubscriptions.Inc()
	go s.pump()

	h.log.Debug().Str("key", key).Msg("bus subscription added")
	return s, nil
}

// Unsubscribe releases key. Unknown keys are ignored.
func (h *Hub) Unsubscribe(key string) {
	h.mu.Lock()
	s, ok := h.subs[key]
	if ok {
		delete(h.subs, key)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	s.close()
	metrics.BusSubscriptions.Dec()
	h.log.Debug().Str("key", key).Msg("bus subscription released")
}

// Publish hands ev to every matching subscription.
func (h *Hub) Publish(ev ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs {
		if s.filter.Matches(ev.Project) {
			s.enqueue(ev)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close releases every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, s := range subs {
		s.close()
		metrics.BusSubscriptions.Dec()
	}
}

func (s *Subscription) enqueue(ev ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()
	close(s.done)
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}

		if len(batch) > 0 {
			continue
		}
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}
