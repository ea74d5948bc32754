package commands

import (
	"context"

	"ProductManager/internal/cli/viewmodel"
	"ProductManager/internal/config"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and log in" }
func (registerCmd) Usage() string       { return "register <email> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return authenticate(ctx, cfg, func(vm *viewmodel.AuthViewModel) { vm.Register(args[0], args[1]) }, "Registered")
}

func init() { RegisterCmd(registerCmd{}) }
