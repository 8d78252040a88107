package domain

import "time"

// OrderStatus — статус заказа.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// transitions — допустимые рёбра автомата статусов.
// delivered и cancelled — терминальные.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

// Valid — известен ли статус.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal — из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition — разрешён ли переход from → to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem — позиция заказа; цена фиксируется в момент оформления.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order — заказ пользователя.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderLine — строка запроса на оформление заказа.
type OrderLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,lte=1000"`
}

// NewOrderInput — запрос на оформление заказа.
type NewOrderInput struct {
	UserID string      `json:"-" validate:"required"`
	Items  []OrderLine `json:"items" validate:"required,min=1,max=100,dive"`
}

// OrderFilter — фильтр списка заказов.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Limit  int
	Offset int
}

// OrderEvent — событие смены статуса заказа для канала уведомлений.
// UserID — ключ маршрутизации, в полезную нагрузку клиенту не попадает.
type OrderEvent struct {
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"-"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewOrderEvent — событие по текущему состоянию заказа.
func NewOrderEvent(order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Timestamp: at.UTC(),
	}
}
