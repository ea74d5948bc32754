package commands

import (
	"context"
	"fmt"

	"ProductManager/internal/cli/prefs"
	"ProductManager/internal/config"
)

type categoriesCmd struct{}

func (categoriesCmd) Name() string        { return "categories" }
func (categoriesCmd) Description() string { return "List the suggested product categories" }
func (categoriesCmd) Usage() string       { return "categories" }

func (categoriesCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	p, err := prefs.Load(cfg.PrefsFile)
	if err != nil {
		return err
	}
	for _, c := range p.Categories {
		fmt.Fprintf(Out, "- %s\n", c)
	}
	return nil
}

func init() { RegisterCmd(categoriesCmd{}) }
