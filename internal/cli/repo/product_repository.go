package repo

import (
	"context"

	"ProductManager/internal/cli/model"
)

// ProductStream is a live feed of the full product set of one user.
// Updates is closed when the feed ends; Err then reports why (nil after
// Close or context cancellation).
type ProductStream interface {
	Updates() <-chan []model.Product
	Err() error
	Close()
}

// ProductRepository is the remote product store of the current session.
type ProductRepository interface {
	WatchProducts(ctx context.Context, userID string) ProductStream
	GetProducts(ctx context.Context, userID string) ([]model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, p model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// SnapshotCache keeps the last product set seen per user.
type SnapshotCache interface {
	SaveSnapshot(userID string, products []model.Product) error
	LoadSnapshot(userID string) ([]model.Product, error)
}
