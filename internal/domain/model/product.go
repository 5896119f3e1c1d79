package model

import "telegram-vpn-shop/internal/domain"

// Product is a purchasable access plan with a fixed duration and price
// in RUB. The catalog is immutable after process start.
type Product struct {
	ID           string
	Name         string
	PriceRUB     int64
	DurationDays int
	Description  string
}

func (p *Product) IsZero() bool { return p == nil || p.ID == "" }

// NewProduct validates and constructs a catalog entry.
func NewProduct(id, name string, priceRUB int64, durationDays int, description string) (*Product, error) {
	if id == "" || name == "" || priceRUB <= 0 || durationDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Product{
		ID:           id,
		Name:         name,
		PriceRUB:     priceRUB,
		DurationDays: durationDays,
		Description:  description,
	}, nil
}

// Catalog is an ordered, read-only product list.
type Catalog struct {
	order []string
	byID  map[string]*Product
}

func NewCatalog(products ...*Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Product, len(products))}
	for _, p := range products {
		if p.IsZero() {
			return nil, domain.ErrInvalidArgument
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, domain.ErrInvalidArgument
		}
		c.order = append(c.order, p.ID)
		c.byID[p.ID] = p
	}
	return c, nil
}

// Find returns the product or domain.ErrInvalidProduct.
func (c *Catalog) Find(id string) (*Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrInvalidProduct
	}
	return p, nil
}

// List returns products in declaration order.
func (c *Catalog) List() []*Product {
	out := make([]*Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// DefaultCatalog mirrors the tariff grid the shop launched with.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(
		&Product{ID: "product_a", Name: "1 Month", PriceRUB: 300, DurationDays: 30, Description: "1 месяц доступа"},
		&Product{ID: "product_b", Name: "3 Months", PriceRUB: 900, DurationDays: 90, Description: "3 месяца доступа"},
		&Product{ID: "product_c", Name: "6 Months", PriceRUB: 1500, DurationDays: 180, Description: "6 месяцев доступа"},
		&Product{ID: "product_d", Name: "1 Year", PriceRUB: 2500, DurationDays: 365, Description: "1 год доступа"},
	)
	return c
}
