package commands

import (
	"fmt"
	"io"
	"strconv"

	"ProductManager/internal/cli/model"

	"github.com/shopspring/decimal"
)

// parseProduct reads <name> <price> <stock> <category>.
func parseProduct(userID string, args []string) (model.Product, error) {
	if len(args) != 4 {
		return model.Product{}, ErrUsage
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid price %q", args[1])
	}
	stock, err := strconv.Atoi(args[2])
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid stock %q", args[2])
	}
	return model.Product{
		UserID:   userID,
		Name:     args[0],
		Price:    price,
		Stock:    stock,
		Category: args[3],
	}, nil
}

func printProducts(w io.Writer, products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "- %s  %s  price=%s  stock=%d  category=%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock, p.Category)
	}
	fmt.Fprintf(w, "Total: %d\n", len(products))
}

func sameProducts(a, b []model.Product) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.UserID != y.UserID || x.Name != y.Name || !x.Price.Equal(y.Price) ||
			x.Stock != y.Stock || x.Category != y.Category {
			return false
		}
	}
	return true
}
