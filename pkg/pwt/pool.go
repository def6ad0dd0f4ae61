package pwt

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Wind-318/baselib/pkg/cmap"
)

// DefaultPoolSize is the maximum pool size when none is configured.
const DefaultPoolSize = 100

// Pool is a bounded, blocking cache of reusable tokens. Instances are
// cloned lazily from a template up to a maximum size and shuttle between
// two disjoint sets, available and in-use; they are never destroyed for
// the pool's lifetime.
//
// A token returned by Get is owned exclusively by the caller until it is
// handed back with Put; the pool never hands the same instance to two
// concurrent Get calls.
type Pool struct {
	// mu orchestrates set transitions against CopySigner: Get and Put
	// hold it shared, CopySigner exclusively, so a signer propagation
	// scan cannot race with instances moving between the sets.
	mu       sync.RWMutex
	template *Token

	available *cmap.Map[*Token, struct{}]
	inUse     *cmap.Map[*Token, struct{}]

	maxSize int64
	current atomic.Int64

	// waitMu guards wait, a channel closed on every Put to wake blocked
	// Get calls; each waiter grabs the current channel before rechecking
	// availability so a wakeup can never be missed.
	waitMu sync.Mutex
	wait   chan struct{}
}

// PoolOption configures NewPool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	maxSize  int
	template *Token
}

// WithMaxSize bounds the pool. Default is DefaultPoolSize.
func WithMaxSize(n int) PoolOption {
	return func(c *poolConfig) { c.maxSize = n }
}

// WithTemplate sets the token every pooled instance is cloned from. This
// is how all pooled instances come to share one signing identity.
func WithTemplate(t *Token) PoolOption {
	return func(c *poolConfig) { c.template = t }
}

// NewPool creates a pool warm-started with maxSize/2 available instances
// cloned from the template.
func NewPool(opts ...PoolOption) (*Pool, error) {
	cfg := poolConfig{maxSize: DefaultPoolSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSize <= 0 {
		return nil, ErrInvalidMaxSize
	}
	if cfg.template == nil {
		tmpl, err := New()
		if err != nil {
			return nil, err
		}
		cfg.template = tmpl
	}

	p := &Pool{
		template:  cfg.template,
		available: cmap.New[*Token, struct{}](),
		inUse:     cmap.New[*Token, struct{}](),
		maxSize:   int64(cfg.maxSize),
		wait:      make(chan struct{}),
	}

	warm := cfg.maxSize / 2
	for range warm {
		p.available.Insert(cfg.template.Clone(), struct{}{})
	}
	p.current.Store(int64(warm))

	return p, nil
}

// Get borrows a token. It prefers an available instance, grows the pool
// while below the maximum, and otherwise blocks until a Put frees an
// instance or ctx is done. Wake order among blocked callers is
// unspecified.
func (p *Pool) Get(ctx context.Context) (*Token, error) {
	for {
		// The wake channel must be captured before the availability
		// check: a Put landing in between closes this channel and the
		// retry sees its instance.
		wait := p.waitChan()

		p.mu.RLock()
		if tok, _, ok := p.available.PopAny(); ok {
			p.inUse.Insert(tok, struct{}{})
			p.mu.RUnlock()
			return tok, nil
		}
		if p.current.Add(1) <= p.maxSize {
			tok := p.template.Clone()
			p.inUse.Insert(tok, struct{}{})
			p.mu.RUnlock()
			return tok, nil
		}
		p.current.Add(-1)
		p.mu.RUnlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Put returns a borrowed token to the pool and wakes blocked Get calls.
// A nil token or one the pool is not tracking as in-use is ignored, so
// Put is idempotent and safe to call defensively.
func (p *Pool) Put(tok *Token) {
	if tok == nil {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.inUse.Contains(tok) {
		return
	}
	p.inUse.Erase(tok)
	p.available.Insert(tok, struct{}{})
	p.notify()
}

// CopySigner propagates src's signing identity to every instance
// currently available. Instances in use keep their identity until they
// are returned and borrowed again; call this only when concurrent Get
// traffic is quiesced or its staleness is tolerable.
func (p *Pool) CopySigner(src *Token) {
	if src == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available.Range(func(tok *Token, _ struct{}) {
		tok.CopySigner(src)
	})
}

// MaxSize returns the configured upper bound.
func (p *Pool) MaxSize() int { return int(p.maxSize) }

// CurrentSize returns how many instances the pool has created. Under
// concurrent Get/Put it may transiently diverge from
// AvailableSize()+UsedSize() by in-flight transitions.
func (p *Pool) CurrentSize() int { return int(p.current.Load()) }

// AvailableSize returns a snapshot of the available set size.
func (p *Pool) AvailableSize() int { return p.available.Len() }

// UsedSize returns a snapshot of the in-use set size.
func (p *Pool) UsedSize() int { return p.inUse.Len() }

func (p *Pool) waitChan() chan struct{} {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()
	return p.wait
}

// notify wakes every blocked Get by closing the current wake channel and
// installing a fresh one. Waiters recheck availability and go back to
// sleep if another caller won the race.
func (p *Pool) notify() {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()
	close(p.wait)
	p.wait = make(chan struct{})
}
