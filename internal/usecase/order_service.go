package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/Gunvolt24/shop_backend/pkg/telemetry"
)

var _ ports.OrderService = (*OrderService)(nil)

// OrderService — прикладная логика заказов (без знаний о транспорте).
// Каждая создающая или меняющая статус мутация после фиксации в хранилище
// уходит в OrderDispatcher.
type OrderService struct {
	repo       ports.OrderRepository
	listing    ports.ListingCache
	products   ports.ProductCache
	dispatcher *OrderDispatcher
	validator  ports.Validator
	log        ports.Logger
}

// NewOrderService — DI-конструктор.
func NewOrderService(
	repo ports.OrderRepository,
	listing ports.ListingCache,
	products ports.ProductCache,
	dispatcher *OrderDispatcher,
	validator ports.Validator,
	log ports.Logger,
) *OrderService {
	return &OrderService{
		repo:       repo,
		listing:    listing,
		products:   products,
		dispatcher: dispatcher,
		validator:  validator,
		log:        log,
	}
}

// ListOrders — свои заказы; администратор может запросить заказы любого пользователя
// (пустой filter.UserID у администратора — все заказы).
func (s *OrderService) ListOrders(ctx context.Context, principal domain.Principal, filter domain.OrderFilter) ([]*domain.Order, error) {
	if !principal.IsAdmin() {
		if filter.UserID != "" && filter.UserID != principal.UserID {
			return nil, fmt.Errorf("%w: orders of another user", domain.ErrForbidden)
		}
		filter.UserID = principal.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Errorf(ctx, "repo.List orders failed err=%v", err)
		return nil, err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// GetOrder — заказ по ID; чужой заказ для не-администратора выглядит как несуществующий.
func (s *OrderService) GetOrder(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccessUser(order.UserID) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return order, nil
}

// CreateOrder — оформление заказа: резерв остатков и фиксация цен в одной транзакции хранилища.
func (s *OrderService) CreateOrder(ctx context.Context, input domain.NewOrderInput) (*domain.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validator.Validate(ctx, &input); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:     uuid.NewString(),
		UserID: input.UserID,
		Status: domain.StatusPending,
		Items:  mergeLines(input.Items),
	}

	start := time.Now()
	if err := s.repo.Create(ctx, order); err != nil {
		s.log.Warnf(ctx, "repo.Create order failed user_id=%s err=%v", input.UserID, err)
		return nil, err
	}
	s.log.Infof(ctx, "order created id=%s items=%d total=%.2f took=%s",
		order.ID, len(order.Items), order.TotalPrice, time.Since(start))

	// Остатки изменились — снимки товаров устарели.
	s.invalidateStock(ctx, order.Items)
	s.dispatcher.Dispatch(ctx, order)
	return order, nil
}

// UpdateStatus — смена статуса заказа.
// Владелец может только отменить заказ; администратор — любой допустимый переход.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	principal domain.Principal,
	id string,
	to domain.OrderStatus,
) (*domain.Order, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}

	current, err := s.GetOrder(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && to != domain.StatusCancelled {
		return nil, fmt.Errorf("%w: customers may only cancel orders", domain.ErrForbidden)
	}
	if !domain.CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, to)
	if err != nil {
		s.log.Warnf(ctx, "repo.UpdateStatus failed order_id=%s %s->%s err=%v", id, current.Status, to, err)
		return nil, err
	}
	s.log.Infof(ctx, "order status changed id=%s %s->%s", id, current.Status, to)

	if to == domain.StatusCancelled {
		s.invalidateStock(ctx, updated.Items)
	}
	s.dispatcher.Dispatch(ctx, updated)
	return updated, nil
}

// DeleteOrder — удаление заказа (только администратор, проверяется на транспорте).
// Статус не меняется, событие не публикуется.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infof(ctx, "order deleted id=%s", id)
	return nil
}

// ------вспомогательные функции------

func (s *OrderService) load(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID order failed id=%s err=%v", id, err)
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) invalidateStock(ctx context.Context, items []domain.OrderItem) {
	if err := s.listing.Invalidate(ctx); err != nil {
		metrics.ListingCacheOps.WithLabelValues("error").Inc()
		s.log.Warnf(ctx, "listing.Invalidate failed: %v", fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err))
	}
	for _, item := range items {
		s.products.Delete(ctx, item.ProductID)
	}
}

// mergeLines — строки с одинаковым товаром объединяются, порядок первого появления сохраняется.
func mergeLines(lines []domain.OrderLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	pos := make(map[string]int, len(lines))
	for _, line := range lines {
		if i, ok := pos[line.ProductID]; ok {
			items[i].Quantity += line.Quantity
			continue
		}
		pos[line.ProductID] = len(items)
		items = append(items, domain.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}
