package notify

import (
	"context"
	"sync"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
)

// DefaultBuffer — размер очереди подписчика по умолчанию.
const DefaultBuffer = 16

var (
	_ ports.EventPublisher       = (*Hub)(nil)
	_ ports.OrderEventSubscriber = (*Hub)(nil)
)

// Hub — in-process канал уведомлений: userID → множество подписок.
// Отправка подписчику неблокирующая; при переполнении очереди вытесняется самое старое событие.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
	closed bool
}

type subscription struct {
	userID string

	mu     sync.Mutex
	ch     chan domain.OrderEvent
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe — открывает подписку на события пользователя.
// Подписка получает только события, опубликованные после её создания.
// Если хаб закрыт, возвращается уже закрытый канал.
func (h *Hub) Subscribe(userID string) (<-chan domain.OrderEvent, func()) {
	sub := &subscription{userID: userID, ch: make(chan domain.OrderEvent, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*subscription]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	metrics.NotifySubscribers.Inc()

	var once sync.Once
	return sub.ch, func() { once.Do(func() { h.unsubscribe(sub) }) }
}

// Publish — рассылает событие всем текущим подписчикам event.UserID.
// Не блокируется на медленных подписчиках. После Close возвращает ErrNotificationUnavailable.
func (h *Hub) Publish(_ context.Context, event domain.OrderEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return domain.ErrNotificationUnavailable
	}
	for sub := range h.subs[event.UserID] {
		if sub.send(event) {
			metrics.NotifyEventsDropped.Inc()
		}
		metrics.NotifyEventsPublished.Inc()
	}
	return nil
}

// Subscribers — число открытых подписок пользователя.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close — закрывает все подписки; дальнейшие Publish возвращают ошибку.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for sub := range set {
			sub.close()
			metrics.NotifySubscribers.Dec()
		}
	}
	h.subs = make(map[string]map[*subscription]struct{})
}

func (h *Hub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	set, ok := h.subs[sub.userID]
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			metrics.NotifySubscribers.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
	h.mu.Unlock()

	sub.close()
}

// send — неблокирующая отправка; true, если ради неё пришлось выбросить старое событие.
func (s *subscription) send(event domain.OrderEvent) (dropped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	for {
		select {
		case s.ch <- event:
			return dropped
		default:
		}
		select {
		case <-s.ch:
			dropped = true
		default:
		}
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
