package commands

import (
	"context"
	"errors"
	"fmt"

	"ProductManager/internal/cli/bootstrap"
	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/prefs"
	"ProductManager/internal/cli/viewmodel"
	"ProductManager/internal/config"
)

type productAddCmd struct{}

func (productAddCmd) Name() string        { return "product-add" }
func (productAddCmd) Description() string { return "Create a product" }
func (productAddCmd) Usage() string       { return "product-add <name> <price> <stock> <category>" }

func (productAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 4 {
		return ErrUsage
	}
	return runProductMutation(ctx, cfg, args, func(vm *viewmodel.ProductViewModel, p model.Product) {
		vm.CreateProduct(p)
	})
}

type productEditCmd struct{}

func (productEditCmd) Name() string        { return "product-edit" }
func (productEditCmd) Description() string { return "Overwrite a product" }
func (productEditCmd) Usage() string {
	return "product-edit <id> <name> <price> <stock> <category>"
}

func (productEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 5 || args[0] == "" {
		return ErrUsage
	}
	id := args[0]
	return runProductMutation(ctx, cfg, args[1:], func(vm *viewmodel.ProductViewModel, p model.Product) {
		vm.UpdateProduct(id, p)
	})
}

type productDeleteCmd struct{}

func (productDeleteCmd) Name() string        { return "product-delete" }
func (productDeleteCmd) Description() string { return "Delete a product" }
func (productDeleteCmd) Usage() string       { return "product-delete <id>" }

func (productDeleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return ErrUsage
	}
	logger := bootstrap.Logger(cfg)
	r, _, done, err := bootstrap.OpenProductRepo(cfg, logger)
	if err != nil {
		return err
	}
	defer done()

	vm := viewmodel.NewProductViewModel(ctx, r, logger)
	defer vm.Close()
	vm.DeleteProduct(args[0])
	vm.Wait()
	return report(ctx, vm.State())
}

// runProductMutation parses a product from args and hands it to apply.
func runProductMutation(ctx context.Context, cfg *config.Config, args []string, apply func(vm *viewmodel.ProductViewModel, p model.Product)) error {
	logger := bootstrap.Logger(cfg)
	r, sess, done, err := bootstrap.OpenProductRepo(cfg, logger)
	if err != nil {
		return err
	}
	defer done()

	p, err := parseProduct(sess.UserID, args)
	if err != nil {
		return err
	}
	if pr, err := prefs.Load(cfg.PrefsFile); err == nil && !pr.IsSuggested(p.Category) {
		fmt.Fprintf(Out, "! category %q is not one of the suggested categories\n", p.Category)
	}

	vm := viewmodel.NewProductViewModel(ctx, r, logger)
	defer vm.Close()
	apply(vm, p)
	vm.Wait()
	return report(ctx, vm.State())
}

func report(ctx context.Context, st viewmodel.ProductState) error {
	if st.Error != "" {
		return errors.New(st.Error)
	}
	if st.SuccessMessage == "" {
		return ctx.Err()
	}
	fmt.Fprintln(Out, st.SuccessMessage)
	return nil
}

func init() {
	RegisterCmd(productAddCmd{})
	RegisterCmd(productEditCmd{})
	RegisterCmd(productDeleteCmd{})
}
