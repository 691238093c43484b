package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kidsafisha/api/internal/platform/config"
)

const defaultDialTimeout = 10 * time.Second

var ErrProviderClosed = errors.New("postgres: provider is closed")

type initResult struct {
	pool *pgxpool.Pool
	err  error
}

// Provider lazily initialises a shared pgx connection pool.
type Provider struct {
	cfg         config.DatabaseConfig
	dialTimeout time.Duration
	configure   []func(*pgxpool.Config)

	stateMu sync.Mutex
	initCh  chan initResult
	pool    *pgxpool.Pool

	closed atomic.Bool
}

// ProviderOption customises the Provider behaviour.
type ProviderOption func(*Provider)

// WithDialTimeout overrides the timeout used when opening the pool.
func WithDialTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		if timeout > 0 {
			p.dialTimeout = timeout
		}
	}
}

// WithPoolConfig registers a hook applied to the parsed pool configuration.
func WithPoolConfig(fn func(*pgxpool.Config)) ProviderOption {
	return func(p *Provider) {
		if fn != nil {
			p.configure = append(p.configure, fn)
		}
	}
}

// NewProvider constructs a Provider using the supplied configuration.
func NewProvider(cfg config.DatabaseConfig, opts ...ProviderOption) *Provider {
	provider := &Provider{
		cfg:         cfg,
		dialTimeout: defaultDialTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(provider)
		}
	}
	return provider
}

// Pool returns the lazily initialised pool. Concurrent callers wait for a single initialisation.
func (p *Provider) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if ctx == nil {
		return nil, errors.New("postgres: context is required")
	}

	for {
		if p.closed.Load() {
			return nil, ErrProviderClosed
		}

		p.stateMu.Lock()
		if p.pool != nil {
			pool := p.pool
			p.stateMu.Unlock()
			return pool, nil
		}
		if waitCh := p.initCh; waitCh != nil {
			p.stateMu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case res, ok := <-waitCh:
				if !ok {
					continue
				}
				if res.err != nil {
					return nil, res.err
				}
				return res.pool, nil
			}
		}

		waitCh := make(chan initResult, 1)
		p.initCh = waitCh
		p.stateMu.Unlock()

		pool, err := p.open(ctx)

		p.stateMu.Lock()
		p.initCh = nil
		if err == nil {
			p.pool = pool
		}
		p.stateMu.Unlock()

		waitCh <- initResult{pool: pool, err: err}
		close(waitCh)

		if err != nil {
			return nil, err
		}
		if p.closed.Load() {
			return nil, ErrProviderClosed
		}
		return pool, nil
	}
}

func (p *Provider) open(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(p.cfg.URL)
	if dsn == "" {
		return nil, errors.New("postgres: database url is required")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if p.cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(p.cfg.MaxConns)
	}
	for _, fn := range p.configure {
		fn(poolCfg)
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if p.dialTimeout > 0 {
		dialCtx, cancel = context.WithTimeout(ctx, p.dialTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(dialCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	return pool, nil
}

// Ping verifies connectivity. It backs the readiness check.
func (p *Provider) Ping(ctx context.Context) error {
	pool, err := p.Pool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases the pool. The Provider cannot be reused afterwards.
func (p *Provider) Close() {
	if p == nil || p.closed.Swap(true) {
		return
	}
	p.stateMu.Lock()
	pool := p.pool
	p.pool = nil
	p.stateMu.Unlock()
	if pool != nil {
		pool.Close()
	}
}
