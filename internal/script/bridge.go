package script

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type request struct {
	query Query
	reply chan Response
}

// Bridge is the engine's inbound queue. Send never blocks on the engine: the
// queue is unbounded and drained by a single consumer.
type Bridge struct {
	mu     sync.Mutex
	queue  []request
	closed bool
	notify chan struct{}
	done   chan struct{}

	timeout time.Duration
	log     *zap.Logger
}

// NewBridge returns an open bridge. timeout bounds Query; zero means callers
// rely on their own context.
func NewBridge(timeout time.Duration, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		timeout: timeout,
		log:     log.Named("bridge"),
	}
}

// Send queues q for the engine. Discarding the returned Pending gives
// fire-and-forget semantics. Restart queries return a nil Pending.
func (b *Bridge) Send(q Query) (*Pending, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	req := request{query: q}
	if q.Kind.HasResponse() {
		req.reply = make(chan Response, 1)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrEngineUnreachable
	}
	b.queue = append(b.queue, req)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	b.log.Debug("query queued", zap.String("id", q.ID), zap.Stringer("kind", q.Kind))

	if req.reply == nil {
		return nil, nil
	}
	return &Pending{id: q.ID, reply: req.reply}, nil
}

// Query sends q and waits for its response, bounded by the bridge timeout.
func (b *Bridge) Query(ctx context.Context, q Query) (Response, error) {
	p, err := b.Send(q)
	if err != nil {
		return Response{}, err
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return p.Await(ctx)
}

// Close marks the engine as gone. Queued queries are failed with
// ErrEngineUnreachable. Close is idempotent.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	dropped := b.queue
	b.queue = nil
	close(b.done)
	b.mu.Unlock()

	for _, req := range dropped {
		if req.reply != nil {
			close(req.reply)
		}
	}
	if len(dropped) > 0 {
		b.log.Warn("engine closed with queued queries", zap.Int("dropped", len(dropped)))
	}
}

// Done is closed once the bridge stops accepting queries.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// next blocks until a request is available, the bridge closes, or ctx ends.
func (b *Bridge) next(ctx context.Context) (request, bool) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			req := b.queue[0]
			b.queue[0] = request{}
			b.queue = b.queue[1:]
			b.mu.Unlock()
			return req, true
		}
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return request{}, false
		}

		select {
		case <-b.notify:
		case <-b.done:
		case <-ctx.Done():
			return request{}, false
		}
	}
}

// Pending is a response that has not been produced yet.
type Pending struct {
	id    string
	reply <-chan Response
}

func (p *Pending) ID() string {
	if p == nil {
		return ""
	}
	return p.id
}

// Await blocks the calling goroutine until the engine answers, the engine
// terminates (ErrEngineUnreachable) or ctx is done.
func (p *Pending) Await(ctx context.Context) (Response, error) {
	if p == nil {
		return Response{}, ErrNoResponse
	}
	select {
	case r, ok := <-p.reply:
		if !ok {
			return Response{}, ErrEngineUnreachable
		}
		return r, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
