package usecase

import (
	"context"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
)

// OrderDispatcher — публикует событие заказа после зафиксированной мутации.
// Ошибка публикации логируется и не возвращается: мутация уже сохранена.
type OrderDispatcher struct {
	publisher ports.EventPublisher
	log       ports.Logger
	now       func() time.Time
}

func NewOrderDispatcher(publisher ports.EventPublisher, log ports.Logger) *OrderDispatcher {
	return &OrderDispatcher{publisher: publisher, log: log, now: time.Now}
}

// Dispatch — событие {order_id, status, timestamp} владельцу заказа.
func (d *OrderDispatcher) Dispatch(ctx context.Context, order *domain.Order) {
	if order == nil || order.UserID == "" {
		return
	}
	event := domain.NewOrderEvent(order, d.now())

	if err := d.publisher.Publish(ctx, event); err != nil {
		metrics.NotifyPublishFailures.Inc()
		d.log.Warnf(ctx, "order event publish failed order_id=%s status=%s err=%v", order.ID, order.Status, err)
		return
	}
	d.log.Infof(ctx, "order event published order_id=%s status=%s", order.ID, order.Status)
}
