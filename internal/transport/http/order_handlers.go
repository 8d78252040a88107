package rest

import (
	"net/http"
	"strings"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const defaultOrdersLimit = 20

type createOrderRequest struct {
	Items []domain.OrderLine `json:"items"`
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) listOrders(c *gin.Context) {
	principal, _ := principalFrom(c)

	limit, offset := httpx.ParseLimitOffset(c, defaultOrdersLimit, maxListLimit)
	filter := domain.OrderFilter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Status: domain.OrderStatus(strings.TrimSpace(c.Query("status"))),
		Limit:  limit,
		Offset: offset,
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, principal, filter)
	if err != nil {
		h.writeError(c, "ListOrders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	principal, _ := principalFrom(c)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, principal, c.Param("id"))
	if err != nil {
		h.writeError(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// createOrder — заказ всегда оформляется на текущего пользователя.
func (h *Handler) createOrder(c *gin.Context) {
	principal, _ := principalFrom(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.CreateOrder(ctx, domain.NewOrderInput{UserID: principal.UserID, Items: req.Items})
	if err != nil {
		h.writeError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	principal, _ := principalFrom(c)

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		badRequest(c, "status is required")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	order, err := h.orders.UpdateStatus(ctx, principal, c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, "UpdateStatus", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.orders.DeleteOrder(ctx, c.Param("id")); err != nil {
		h.writeError(c, "DeleteOrder", err)
		return
	}
	c.Status(http.StatusNoContent)
}
