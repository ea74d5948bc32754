package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is wrapped by every Validate failure.
var ErrInvalidProduct = errors.New("invalid product")

// DefaultCategories is the suggested category set shown by the client.
var DefaultCategories = []string{"Electrónica", "Ropa", "Alimentos", "Hogar", "Deportes", "Otros"}

// Product is a stock record owned by one user.
// ID is the document id and never part of the stored body.
type Product struct {
	ID       string          `json:"-"`
	UserID   string          `json:"userId"`
	Name     string          `json:"nombre"`
	Price    decimal.Decimal `json:"precio"`
	Stock    int             `json:"stock"`
	Category string          `json:"categoria"`
}

// MarshalJSON writes the price as a JSON number.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price json.Number `json:"precio"`
	}{plain: plain(p), Price: json.Number(p.Price.String())})
}

// Validate checks the fields a user fills in the product form.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case strings.TrimSpace(p.Category) == "":
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	return nil
}
