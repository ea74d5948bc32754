package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"ProductManager/internal/cli/bootstrap"
	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/viewmodel"
	"ProductManager/internal/config"
)

const (
	retryInterval = 2 * time.Second
	maxBackoff    = 30 * time.Second
)

type watchCmd struct{}

func (watchCmd) Name() string { return "watch" }
func (watchCmd) Description() string {
	return "Follow your products live (--retry: resubscribe after failures)"
}
func (watchCmd) Usage() string { return "watch [--retry]" }

func (watchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	retry := fs.Bool("retry", false, "resubscribe with backoff when the subscription fails")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	logger := bootstrap.Logger(cfg)
	r, sess, done, err := bootstrap.OpenProductRepo(cfg, logger)
	if err != nil {
		return err
	}
	defer done()

	vm := viewmodel.NewProductViewModel(ctx, r, logger)
	defer vm.Close()
	states, unsubscribe := vm.Subscribe()
	defer unsubscribe()

	// the first state is the empty initial one
	<-states
	vm.LoadProducts(sess.UserID)
	fmt.Fprintln(Out, "Watching products (Ctrl+C to stop)")

	var (
		shown    []model.Product
		printed  bool
		failures int
		retryC   <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-retryC:
			retryC = nil
			vm.ClearMessages()
			vm.LoadProducts(sess.UserID)
		case st, ok := <-states:
			if !ok {
				return nil
			}
			if st.Error != "" {
				if retryC != nil {
					continue
				}
				if !*retry {
					return errors.New(st.Error)
				}
				wait := calculateBackoff(failures, retryInterval)
				failures++
				logger.Warnw("subscription failed", "error", st.Error, "retry_in", wait)
				fmt.Fprintf(Out, "! %s, resubscribing in %s\n", st.Error, wait)
				retryC = time.After(wait)
				continue
			}
			if printed && sameProducts(shown, st.Products) {
				continue
			}
			fmt.Fprintf(Out, "[%s]\n", time.Now().Format(time.TimeOnly))
			printProducts(Out, st.Products)
			shown, printed, failures = st.Products, true, 0
		}
	}
}

// calculateBackoff doubles the interval per consecutive failure, up to maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func init() { RegisterCmd(watchCmd{}) }
