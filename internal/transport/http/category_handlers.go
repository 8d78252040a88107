package rest

import (
	"net/http"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/pkg/httpx"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listCategories(c *gin.Context) {
	limit, offset := 0, 0
	_, hasLimit := c.GetQuery("limit")
	_, hasOffset := c.GetQuery("offset")
	if hasLimit || hasOffset {
		limit, offset = httpx.ParseLimitOffset(c, maxListLimit, maxListLimit)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	categories, err := h.categories.ListCategories(ctx, limit, offset)
	if err != nil {
		h.writeError(c, "ListCategories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) getCategory(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	category, err := h.categories.GetCategory(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, "GetCategory", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) createCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	created, err := h.categories.CreateCategory(ctx, &category)
	if err != nil {
		h.writeError(c, "CreateCategory", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	category.ID = c.Param("id")

	ctx, cancel := h.requestContext(c)
	defer cancel()

	updated, err := h.categories.UpdateCategory(ctx, &category)
	if err != nil {
		h.writeError(c, "UpdateCategory", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) patchCategory(c *gin.Context) {
	var patch domain.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	updated, err := h.categories.PatchCategory(ctx, c.Param("id"), patch)
	if err != nil {
		h.writeError(c, "PatchCategory", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.categories.DeleteCategory(ctx, c.Param("id")); err != nil {
		h.writeError(c, "DeleteCategory", err)
		return
	}
	c.Status(http.StatusNoContent)
}
