package domain

import (
	"strings"
	"time"
)

// Product — товар каталога. Цена хранится как NUMERIC(12,2): не больше 9999999999.99.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=4000"`
	Price       float64   `json:"price" validate:"gte=0,lte=9999999999.99,money"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  *string   `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductPatch — частичное изменение товара (PATCH): nil-поле не меняется.
type ProductPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lte=9999999999.99,money"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	CategoryID  *string  `json:"category_id"`

	// ClearCategory — явный сброс категории (category_id: null в запросе).
	ClearCategory bool `json:"-"`
}

// Apply — применяет патч к копии товара.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.ClearCategory {
		product.CategoryID = nil
	} else if p.CategoryID != nil {
		id := *p.CategoryID
		product.CategoryID = &id
	}
	return product
}

// Допустимые значения сортировки списка товаров.
var productOrderings = map[string]struct{}{
	"name": {}, "-name": {},
	"price": {}, "-price": {},
	"stock": {}, "-stock": {},
	"created_at": {}, "-created_at": {},
}

// ValidProductOrdering — проверяет, поддерживается ли поле сортировки.
func ValidProductOrdering(ordering string) bool {
	_, ok := productOrderings[ordering]
	return ok
}

// ProductFilter — фильтры и пагинация списка товаров.
// Пустой фильтр означает «полный список без пагинации» — только он кэшируется.
type ProductFilter struct {
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	Search     string
	Ordering   string
	Limit      int
	Offset     int
}

// IsEmpty — true, если не задан ни один фильтр и ни один параметр пагинации/сортировки.
func (f ProductFilter) IsEmpty() bool {
	return f.CategoryID == "" &&
		f.MinPrice == nil &&
		f.MaxPrice == nil &&
		f.InStock == nil &&
		strings.TrimSpace(f.Search) == "" &&
		f.Ordering == "" &&
		f.Limit == 0 &&
		f.Offset == 0
}

// Category — категория товаров. Товары ссылаются на категорию, но не принадлежат ей.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// CategoryPatch — частичное изменение категории.
type CategoryPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

// Apply — применяет патч к копии категории.
func (p CategoryPatch) Apply(category Category) Category {
	if p.Name != nil {
		category.Name = *p.Name
	}
	if p.Description != nil {
		category.Description = *p.Description
	}
	return category
}
