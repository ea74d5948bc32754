package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"ProductManager/internal/cli/bootstrap"
	"ProductManager/internal/cli/docstore"
	"ProductManager/internal/config"
)

type productsCmd struct{}

func (productsCmd) Name() string        { return "products" }
func (productsCmd) Description() string { return "List your products (--offline: last cached list)" }
func (productsCmd) Usage() string       { return "products [--offline]" }

func (productsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	offline := fs.Bool("offline", false, "read the local cache only")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	logger := bootstrap.Logger(cfg)
	if *offline {
		sess, err := bootstrap.ActiveSession(cfg)
		if err != nil {
			return err
		}
		return printCached(cfg, sess.UserID)
	}

	r, sess, done, err := bootstrap.OpenProductRepo(cfg, logger)
	if err != nil {
		return err
	}
	list, err := r.GetProducts(ctx, sess.UserID)
	_ = done()
	if err == nil {
		printProducts(Out, list)
		return nil
	}
	// the server answered: the cache would not help
	if errors.Is(err, docstore.ErrPermissionDenied) || errors.Is(err, docstore.ErrUnauthenticated) {
		return err
	}
	logger.Warnw("listing products failed", "error", err)
	fmt.Fprintf(Out, "! server unreachable (%v), showing cached products\n", err)
	return printCached(cfg, sess.UserID)
}

func printCached(cfg *config.Config, userID string) error {
	cache, done, err := bootstrap.OpenSnapshotCache(cfg, userID)
	if err != nil {
		return err
	}
	defer done()
	list, err := cache.LoadSnapshot(userID)
	if err != nil {
		return err
	}
	printProducts(Out, list)
	return nil
}

func init() { RegisterCmd(productsCmd{}) }
