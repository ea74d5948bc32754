package viewmodel

import (
	"context"
	"sync"

	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/repo"

	"github.com/stretchr/testify/mock"
)

type fakeStream struct {
	ch   chan []model.Product
	mu   sync.Mutex
	err  error
	once sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan []model.Product)}
}

func (s *fakeStream) Updates() <-chan []model.Product { return s.ch }

func (s *fakeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeStream) Close() { s.once.Do(func() { close(s.ch) }) }

func (s *fakeStream) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.Close()
}

// mockProductRepo mocks mutations; WatchProducts hands out the streams queued by the test.
type mockProductRepo struct {
	mock.Mock
	streams chan *fakeStream
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{streams: make(chan *fakeStream, 4)}
}

func (m *mockProductRepo) WatchProducts(ctx context.Context, userID string) repo.ProductStream {
	s := <-m.streams
	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return s
}

func (m *mockProductRepo) GetProducts(ctx context.Context, userID string) ([]model.Product, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]model.Product); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) CreateProduct(ctx context.Context, p model.Product) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, id string, p model.Product) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) Logout() error {
	return m.Called().Error(0)
}

func (m *mockAuthService) CurrentUser() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}
