package kafka

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
)

// orderEventMessage — формат события в топике. В отличие от полезной нагрузки
// для клиента содержит user_id: по нему событие маршрутизируется в хабе.
type orderEventMessage struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	Status    domain.OrderStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

func encodeEvent(event domain.OrderEvent) ([]byte, error) {
	return json.Marshal(orderEventMessage{
		OrderID:   event.OrderID,
		UserID:    event.UserID,
		Status:    event.Status,
		Timestamp: event.Timestamp.UTC(),
	})
}

// decodeEvent — разбор и проверка сообщения. Любая проблема — domain.ErrValidation.
func decodeEvent(raw []byte) (domain.OrderEvent, error) {
	var msg orderEventMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&msg); err != nil {
		return domain.OrderEvent{}, fmt.Errorf("%w: decode order event: %v", domain.ErrValidation, err)
	}

	switch {
	case strings.TrimSpace(msg.OrderID) == "":
		return domain.OrderEvent{}, fmt.Errorf("%w: order_id обязателен", domain.ErrValidation)
	case strings.TrimSpace(msg.UserID) == "":
		return domain.OrderEvent{}, fmt.Errorf("%w: user_id обязателен", domain.ErrValidation)
	case !msg.Status.Valid():
		return domain.OrderEvent{}, fmt.Errorf("%w: неизвестный статус %q", domain.ErrValidation, msg.Status)
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return domain.OrderEvent{
		OrderID:   msg.OrderID,
		UserID:    msg.UserID,
		Status:    msg.Status,
		Timestamp: ts.UTC(),
	}, nil
}
