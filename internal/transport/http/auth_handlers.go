package rest

import (
	"net/http"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/gin-gonic/gin"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) register(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	user, err := h.auth.Register(ctx, creds)
	if err != nil {
		h.writeError(c, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) obtainToken(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	pair, err := h.auth.Login(ctx, creds)
	if err != nil {
		h.writeError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		badRequest(c, "refresh token is required")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	pair, err := h.auth.Refresh(ctx, req.Refresh)
	if err != nil {
		h.writeError(c, "Refresh", err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
