package commands

import (
	"context"
	"errors"
	"fmt"

	"ProductManager/internal/cli/bootstrap"
	"ProductManager/internal/cli/viewmodel"
	"ProductManager/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the session" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return authenticate(ctx, cfg, func(vm *viewmodel.AuthViewModel) { vm.Login(args[0], args[1]) }, "Logged in")
}

// authenticate runs one sign-in action through the auth view model and
// prepares the local cache of the signed-in user.
func authenticate(ctx context.Context, cfg *config.Config, action func(vm *viewmodel.AuthViewModel), done string) error {
	logger := bootstrap.Logger(cfg)
	vm := viewmodel.NewAuthViewModel(ctx, bootstrap.AuthService(cfg), logger)
	defer vm.Close()

	action(vm)
	vm.Wait()
	st := vm.State()
	if st.Error != "" {
		return errors.New(st.Error)
	}
	if !st.IsLoggedIn {
		return ctx.Err()
	}

	if _, cleanup, err := bootstrap.OpenSnapshotCache(cfg, st.UserID); err != nil {
		logger.Warnw("failed to prepare local cache", "user_id", st.UserID, "error", err)
	} else {
		_ = cleanup()
	}
	fmt.Fprintf(Out, "%s (user id %s)\n", done, st.UserID)
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
