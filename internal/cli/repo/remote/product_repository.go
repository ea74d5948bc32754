// Package remote implements the product repository over the document store.
package remote

import (
	"context"
	"errors"

	"ProductManager/internal/cli/docstore"
	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/repo"

	"go.uber.org/zap"
)

const productsCollection = "products"

// ErrEmptyID is returned for updates and deletes without a document id.
var ErrEmptyID = errors.New("empty product id")

// DocumentStore is the part of the document store client the repository uses.
type DocumentStore interface {
	Add(ctx context.Context, collection string, data any) (string, error)
	Set(ctx context.Context, collection, id string, data any) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, q docstore.Query) ([]docstore.DocumentSnapshot, error)
	Listen(q docstore.Query, onSnapshot func([]docstore.DocumentSnapshot), onError func(error)) docstore.ListenerRegistration
}

// ProductRepository keeps products in the "products" collection, one
// document per product, owned through its userId field.
type ProductRepository struct {
	store  DocumentStore
	cache  repo.SnapshotCache
	logger *zap.SugaredLogger
}

var _ repo.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(store DocumentStore, logger *zap.SugaredLogger) *ProductRepository {
	return &ProductRepository{store: store, logger: logger}
}

// WithCache makes every delivered product set also land in cache.
func (r *ProductRepository) WithCache(cache repo.SnapshotCache) *ProductRepository {
	r.cache = cache
	return r
}

// WatchProducts streams the products of userID until ctx is done, the
// stream is closed or the listener fails.
func (r *ProductRepository) WatchProducts(ctx context.Context, userID string) repo.ProductStream {
	return r.Watch(ctx, userID)
}

// Watch is WatchProducts with the concrete stream type.
func (r *ProductRepository) Watch(ctx context.Context, userID string) *Stream {
	var onList func([]model.Product)
	if r.cache != nil {
		onList = func(products []model.Product) { r.saveSnapshot(userID, products) }
	}
	return newStream(ctx, r.store, ownedBy(userID), r.logger, onList)
}

// GetProducts reads the current products of userID once.
func (r *ProductRepository) GetProducts(ctx context.Context, userID string) ([]model.Product, error) {
	docs, err := r.store.Get(ctx, ownedBy(userID))
	if err != nil {
		return nil, err
	}
	products := decodeProducts(docs, r.logger)
	if r.cache != nil {
		r.saveSnapshot(userID, products)
	}
	return products, nil
}

// CreateProduct stores p as a new document and returns its id.
func (r *ProductRepository) CreateProduct(ctx context.Context, p model.Product) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	id, err := r.store.Add(ctx, productsCollection, p)
	if err != nil {
		return "", err
	}
	r.logger.Debugw("product created", "id", id)
	return id, nil
}

// UpdateProduct overwrites document id with p.
func (r *ProductRepository) UpdateProduct(ctx context.Context, id string, p model.Product) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return r.store.Set(ctx, productsCollection, id, p)
}

// DeleteProduct removes document id.
func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return r.store.Delete(ctx, productsCollection, id)
}

func (r *ProductRepository) saveSnapshot(userID string, products []model.Product) {
	if err := r.cache.SaveSnapshot(userID, products); err != nil {
		r.logger.Warnw("failed to cache products", "user_id", userID, "error", err)
	}
}

func ownedBy(userID string) docstore.Query {
	return docstore.Query{Collection: productsCollection, Field: "userId", Value: userID}
}
