package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/pkg/httpx"
	"github.com/gin-gonic/gin"
)

const (
	maxListLimit = 100
)

// productFilterFromQuery — фильтр списка товаров из query-параметров.
// Без параметров получается пустой фильтр (кэшируемый полный список).
func productFilterFromQuery(c *gin.Context) (domain.ProductFilter, error) {
	f := domain.ProductFilter{
		CategoryID: strings.TrimSpace(c.Query("category")),
		Search:     strings.TrimSpace(c.Query("search")),
		Ordering:   strings.TrimSpace(c.Query("ordering")),
	}

	var err error
	if f.MinPrice, err = httpx.QueryFloat(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = httpx.QueryFloat(c, "max_price"); err != nil {
		return f, err
	}
	if f.InStock, err = httpx.QueryBool(c, "in_stock"); err != nil {
		return f, err
	}

	_, hasLimit := c.GetQuery("limit")
	_, hasOffset := c.GetQuery("offset")
	if hasLimit || hasOffset {
		f.Limit, f.Offset = httpx.ParseLimitOffset(c, maxListLimit, maxListLimit)
	}
	return f, nil
}

func (h *Handler) listProducts(c *gin.Context) {
	filter, err := productFilterFromQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	products, err := h.products.ListProducts(ctx, filter)
	if err != nil {
		h.writeError(c, "ListProducts", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	product, err := h.products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, "GetProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	created, err := h.products.CreateProduct(ctx, &product)
	if err != nil {
		h.writeError(c, "CreateProduct", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	product.ID = c.Param("id")

	ctx, cancel := h.requestContext(c)
	defer cancel()

	updated, err := h.products.UpdateProduct(ctx, &product)
	if err != nil {
		h.writeError(c, "UpdateProduct", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) patchProduct(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, "cannot read body")
		return
	}
	patch, err := decodeProductPatch(raw)
	if err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	updated, err := h.products.PatchProduct(ctx, c.Param("id"), patch)
	if err != nil {
		h.writeError(c, "PatchProduct", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// decodeProductPatch — патч товара; "category_id": null означает сброс категории.
func decodeProductPatch(raw []byte) (domain.ProductPatch, error) {
	var patch domain.ProductPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return patch, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return patch, err
	}
	if v, ok := fields["category_id"]; ok && strings.TrimSpace(string(v)) == "null" {
		patch.ClearCategory = true
	}
	return patch, nil
}

func (h *Handler) deleteProduct(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.products.DeleteProduct(ctx, c.Param("id")); err != nil {
		h.writeError(c, "DeleteProduct", err)
		return
	}
	c.Status(http.StatusNoContent)
}
