package viewmodel

import (
	"context"
	"sync"

	"ProductManager/internal/cli/service"

	"go.uber.org/zap"
)

const errUnknown = "Unknown error"

// AuthState is the sign-in state. Empty strings mean none.
type AuthState struct {
	IsLoggedIn bool
	UserID     string
	IsLoading  bool
	Error      string
}

// AuthViewModel drives login, registration and logout.
type AuthViewModel struct {
	auth   service.AuthService
	logger *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	state  AuthState
	obs    observable[AuthState]
}

// NewAuthViewModel starts from the locally cached session.
func NewAuthViewModel(ctx context.Context, auth service.AuthService, logger *zap.SugaredLogger) *AuthViewModel {
	ctx, cancel := context.WithCancel(ctx)
	vm := &AuthViewModel{auth: auth, logger: logger, ctx: ctx, cancel: cancel}
	if userID, ok := auth.CurrentUser(); ok {
		vm.state = AuthState{IsLoggedIn: true, UserID: userID}
	}
	return vm
}

func (vm *AuthViewModel) State() AuthState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

func (vm *AuthViewModel) Subscribe() (<-chan AuthState, func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.obs.subscribe(vm.state)
}

func (vm *AuthViewModel) Login(email, password string) {
	vm.authenticate(email, password, vm.auth.Login)
}

func (vm *AuthViewModel) Register(email, password string) {
	vm.authenticate(email, password, vm.auth.Register)
}

// Logout drops the session; the state is signed out when it returns.
func (vm *AuthViewModel) Logout() {
	if err := vm.auth.Logout(); err != nil {
		vm.logger.Warnw("failed to clear session", "error", err)
	}
	vm.set(context.Background(), AuthState{})
}

func (vm *AuthViewModel) ClearError() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.Error = ""
	vm.obs.publish(vm.state)
}

func (vm *AuthViewModel) Wait() {
	vm.wg.Wait()
}

func (vm *AuthViewModel) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
	vm.cancel()
	vm.wg.Wait()
	vm.obs.closeAll()
}

func (vm *AuthViewModel) authenticate(email, password string, call func(ctx context.Context, email, password string) (string, error)) {
	vm.mu.Lock()
	if vm.closed || vm.ctx.Err() != nil {
		vm.mu.Unlock()
		return
	}
	vm.state = AuthState{IsLoading: true}
	vm.obs.publish(vm.state)
	vm.wg.Add(1)
	vm.mu.Unlock()

	go func() {
		defer vm.wg.Done()
		userID, err := call(vm.ctx, email, password)
		if err != nil {
			vm.logger.Debugw("authentication failed", "email", email, "error", err)
			vm.set(vm.ctx, AuthState{Error: errorText(err, errUnknown)})
			return
		}
		vm.set(vm.ctx, AuthState{IsLoggedIn: true, UserID: userID})
	}()
}

func (vm *AuthViewModel) set(ctx context.Context, st AuthState) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	vm.state = st
	vm.obs.publish(st)
}
