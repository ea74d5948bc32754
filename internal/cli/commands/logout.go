package commands

import (
	"context"
	"fmt"

	"ProductManager/internal/cli/bootstrap"
	"ProductManager/internal/cli/viewmodel"
	"ProductManager/internal/config"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored session" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	vm := viewmodel.NewAuthViewModel(ctx, bootstrap.AuthService(cfg), bootstrap.Logger(cfg))
	defer vm.Close()
	vm.Logout()
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
