package remote

import (
	"context"
	"encoding/json"
	"sync"

	"ProductManager/internal/cli/docstore"
	"ProductManager/internal/cli/model"
	"ProductManager/internal/cli/repo"

	"go.uber.org/zap"
)

// Stream republishes the snapshots of one listener as product lists.
//
// C always holds the newest list: an unread list is replaced by a newer one.
// C is closed when the stream ends; the listener registration is released
// exactly once whichever way it ends.
type Stream struct {
	C <-chan []model.Product

	out    chan []model.Product
	stop   chan struct{}
	done   chan struct{}
	logger *zap.SugaredLogger
	onList func([]model.Product)

	stopOnce    sync.Once
	releaseOnce sync.Once

	mu  sync.Mutex
	err error
}

var _ repo.ProductStream = (*Stream)(nil)

type listener interface {
	Listen(q docstore.Query, onSnapshot func([]docstore.DocumentSnapshot), onError func(error)) docstore.ListenerRegistration
}

func newStream(ctx context.Context, l listener, q docstore.Query, logger *zap.SugaredLogger, onList func([]model.Product)) *Stream {
	out := make(chan []model.Product, 1)
	s := &Stream{
		C:      out,
		out:    out,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
		onList: onList,
	}

	snapshots := make(chan []docstore.DocumentSnapshot, 1)
	errs := make(chan error, 1)
	reg := l.Listen(q,
		func(docs []docstore.DocumentSnapshot) { replaceLatest(snapshots, docs) },
		func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	)
	go s.run(ctx, reg, snapshots, errs)
	return s
}

func (s *Stream) run(ctx context.Context, reg docstore.ListenerRegistration, snapshots <-chan []docstore.DocumentSnapshot, errs <-chan error) {
	defer close(s.done)
	defer close(s.out)
	defer s.release(reg)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case docs := <-snapshots:
			s.deliver(docs)
		case err := <-errs:
			// a snapshot sent before the failure is still delivered
			select {
			case docs := <-snapshots:
				s.deliver(docs)
			default:
			}
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			s.logger.Warnw("product listener failed", "error", err)
			return
		}
	}
}

func (s *Stream) release(reg docstore.ListenerRegistration) {
	s.releaseOnce.Do(reg.Remove)
}

func (s *Stream) deliver(docs []docstore.DocumentSnapshot) {
	products := decodeProducts(docs, s.logger)
	if s.onList != nil {
		s.onList(products)
	}
	replaceLatest(s.out, products)
}

// Updates returns C.
func (s *Stream) Updates() <-chan []model.Product { return s.C }

// Err reports the listener failure that ended the stream, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream and waits until the listener is released.
func (s *Stream) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// decodeProducts converts documents to products, dropping the ones that do not decode.
func decodeProducts(docs []docstore.DocumentSnapshot, logger *zap.SugaredLogger) []model.Product {
	products := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		var p model.Product
		if err := json.Unmarshal(d.Data, &p); err != nil {
			logger.Debugw("dropping malformed product document", "id", d.ID, "error", err)
			continue
		}
		p.ID = d.ID
		products = append(products, p)
	}
	return products
}

// replaceLatest puts v into a one-slot channel, evicting an unread value.
// ch must have a single sender.
func replaceLatest[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
