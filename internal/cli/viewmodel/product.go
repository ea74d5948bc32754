package viewmodel

import (
	"context"
	"slices"
	"sync"

	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/repo"

	"go.uber.org/zap"
)

const (
	MsgProductCreated = "Product created successfully"
	MsgProductUpdated = "Product updated successfully"
	MsgProductDeleted = "Product deleted successfully"

	errCreatingProduct = "Error creating product"
	errUpdatingProduct = "Error updating product"
	errDeletingProduct = "Error deleting product"
	errLoadingProducts = "Error loading products"
)

// ProductState is the product list screen state. Empty strings mean no message.
type ProductState struct {
	Products       []model.Product
	IsLoading      bool
	Error          string
	SuccessMessage string
}

func (s ProductState) clone() ProductState {
	s.Products = slices.Clone(s.Products)
	return s
}

// ProductViewModel owns the ProductState of one session. Operations return
// immediately and complete on background goroutines bound to the scope
// passed to NewProductViewModel; once that scope ends nothing is published.
type ProductViewModel struct {
	repo   repo.ProductRepository
	logger *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	state    ProductState
	inFlight int
	stopLoad context.CancelFunc
	obs      observable[ProductState]
}

func NewProductViewModel(ctx context.Context, r repo.ProductRepository, logger *zap.SugaredLogger) *ProductViewModel {
	ctx, cancel := context.WithCancel(ctx)
	return &ProductViewModel{
		repo:   r,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		state:  ProductState{Products: []model.Product{}},
	}
}

// State returns a copy of the current state.
func (vm *ProductViewModel) State() ProductState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.clone()
}

// Subscribe returns a channel that first yields the current state and then
// the latest state after every change, plus a func that ends the subscription.
func (vm *ProductViewModel) Subscribe() (<-chan ProductState, func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.obs.subscribe(vm.state.clone())
}

// LoadProducts follows the products of userID, replacing the list on every
// snapshot. A failing subscription sets Error and stops; call LoadProducts
// again to resubscribe. A new call replaces the previous subscription.
func (vm *ProductViewModel) LoadProducts(userID string) {
	vm.mu.Lock()
	if !vm.runnable() {
		vm.mu.Unlock()
		return
	}
	if vm.stopLoad != nil {
		vm.stopLoad()
	}
	ctx, cancel := context.WithCancel(vm.ctx)
	vm.stopLoad = cancel
	vm.wg.Add(1)
	vm.mu.Unlock()

	go func() {
		defer vm.wg.Done()
		stream := vm.repo.WatchProducts(ctx, userID)
		defer stream.Close()
		for products := range stream.Updates() {
			vm.apply(ctx, func(s *ProductState) { s.Products = products })
		}
		if err := stream.Err(); err != nil {
			vm.logger.Warnw("product subscription failed", "user_id", userID, "error", err)
			vm.apply(ctx, func(s *ProductState) { s.Error = errorText(err, errLoadingProducts) })
		}
	}()
}

// CreateProduct stores p. IsLoading is set before it returns.
func (vm *ProductViewModel) CreateProduct(p model.Product) {
	vm.mutate(true, MsgProductCreated, errCreatingProduct, func(ctx context.Context) error {
		_, err := vm.repo.CreateProduct(ctx, p)
		return err
	})
}

// UpdateProduct overwrites product id with p. IsLoading is set before it returns.
func (vm *ProductViewModel) UpdateProduct(id string, p model.Product) {
	vm.mutate(true, MsgProductUpdated, errUpdatingProduct, func(ctx context.Context) error {
		return vm.repo.UpdateProduct(ctx, id, p)
	})
}

// DeleteProduct removes product id. It does not touch IsLoading.
func (vm *ProductViewModel) DeleteProduct(id string) {
	vm.mutate(false, MsgProductDeleted, errDeletingProduct, func(ctx context.Context) error {
		return vm.repo.DeleteProduct(ctx, id)
	})
}

// ClearMessages drops Error and SuccessMessage.
func (vm *ProductViewModel) ClearMessages() {
	vm.apply(context.Background(), func(s *ProductState) {
		s.Error = ""
		s.SuccessMessage = ""
	})
}

// Wait blocks until every launched operation has finished. A live
// LoadProducts only finishes when its subscription ends.
func (vm *ProductViewModel) Wait() {
	vm.wg.Wait()
}

// Close ends the scope and waits for background work. Subscriber channels are closed.
func (vm *ProductViewModel) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
	vm.cancel()
	vm.wg.Wait()
	vm.obs.closeAll()
}

// mutate runs op in the background. IsLoading is the number of running
// loading operations being non-zero, so overlapping calls keep it set until
// the last one ends.
func (vm *ProductViewModel) mutate(loading bool, success, fallback string, op func(ctx context.Context) error) {
	vm.mu.Lock()
	if !vm.runnable() {
		vm.mu.Unlock()
		return
	}
	if loading {
		vm.inFlight++
		vm.state.IsLoading = true
		vm.obs.publish(vm.state.clone())
	}
	vm.wg.Add(1)
	vm.mu.Unlock()

	go func() {
		defer vm.wg.Done()
		err := op(vm.ctx)
		if err != nil {
			vm.logger.Debugw("product operation failed", "error", err)
		}

		vm.mu.Lock()
		defer vm.mu.Unlock()
		if loading {
			vm.inFlight--
		}
		if vm.ctx.Err() != nil {
			return
		}
		if loading {
			vm.state.IsLoading = vm.inFlight > 0
		}
		if err != nil {
			vm.state.Error = errorText(err, fallback)
			vm.state.SuccessMessage = ""
		} else {
			vm.state.SuccessMessage = success
			vm.state.Error = ""
		}
		vm.obs.publish(vm.state.clone())
	}()
}

// runnable reports whether new work may start. Callers hold vm.mu, which
// orders wg.Add against Close.
func (vm *ProductViewModel) runnable() bool {
	return !vm.closed && vm.ctx.Err() == nil
}

// apply changes the state under the lock and publishes it, unless ctx is done.
func (vm *ProductViewModel) apply(ctx context.Context, fn func(s *ProductState)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	fn(&vm.state)
	vm.obs.publish(vm.state.clone())
}
