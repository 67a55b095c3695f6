package navigator

import (
	"context"
	"log"
	"sync"

	"flipnews/internal/models"
)

// FavoritesCounter reports the size of the favorites set.
type FavoritesCounter interface {
	Len() int
}

// Engine owns a navigation state and runs its effects. Foreground loads
// run synchronously on the calling goroutine; prefetches run in the
// background and only touch the cache.
type Engine struct {
	mu       sync.Mutex
	state    State
	opts     Options
	loader   *Loader
	favs     FavoritesCounter
	logger   *log.Logger
	subs     []func(State)
	prefetch sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

func WithEndPolicy(p EndPolicy) Option {
	return func(e *Engine) { e.opts.EndPolicy = p }
}

func WithFavorites(f FavoritesCounter) Option {
	return func(e *Engine) { e.favs = f }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(loader *Loader, opts ...Option) *Engine {
	e := &Engine{
		state:  Initial(models.CategoryFilter("")),
		loader: loader,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers fn to receive every new state. It returns a function
// that removes the subscription.
func (e *Engine) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
	idx := len(e.subs) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.subs[idx] = nil
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Current() (models.Article, bool) { return e.State().Current() }
func (e *Engine) CanNext() bool                   { return e.State().CanNext() }
func (e *Engine) CanPrev() bool                   { return e.State().CanPrev() }

func (e *Engine) SetCategory(ctx context.Context, category string) error {
	return e.Dispatch(ctx, SetCategory{Category: category})
}

func (e *Engine) SetSearch(ctx context.Context, query string) error {
	return e.Dispatch(ctx, SetSearch{Query: query})
}

func (e *Engine) Next(ctx context.Context) error  { return e.Dispatch(ctx, Next{}) }
func (e *Engine) Prev(ctx context.Context) error  { return e.Dispatch(ctx, Prev{}) }
func (e *Engine) Retry(ctx context.Context) error { return e.Dispatch(ctx, Retry{}) }

func (e *Engine) ShowFavorites() { _ = e.Dispatch(context.Background(), ShowFavorites{}) }
func (e *Engine) ShowNews()      { _ = e.Dispatch(context.Background(), ShowNews{}) }

// Dispatch applies ev and runs the resulting effects. It returns the error
// of a failed foreground load; the same error is kept in the state.
func (e *Engine) Dispatch(ctx context.Context, ev Event) error {
	effects := e.apply(ev)
	var loadErr error
	for len(effects) > 0 {
		effect := effects[0]
		effects = effects[1:]
		switch eff := effect.(type) {
		case Load:
			result, err := e.loader.Load(ctx, eff.Filter, eff.Page)
			if err != nil {
				e.logger.Printf("Failed to load %s page %d: %v", eff.Filter, eff.Page, err)
				loadErr = err
			}
			effects = append(effects, e.apply(Loaded{Load: eff, Result: result, Err: err})...)
		case Prefetch:
			e.startPrefetch(eff)
		}
	}
	return loadErr
}

// Wait blocks until background prefetches finish.
func (e *Engine) Wait() {
	e.prefetch.Wait()
}

func (e *Engine) apply(ev Event) []Effect {
	e.mu.Lock()
	if e.favs != nil {
		e.state, _ = Transition(e.state, FavoritesChanged{Len: e.favs.Len()}, e.opts)
	}
	var effects []Effect
	e.state, effects = Transition(e.state, ev, e.opts)
	state := e.state
	subs := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		if fn != nil {
			subs = append(subs, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return effects
}

func (e *Engine) startPrefetch(p Prefetch) {
	if e.loader.Cached(p.Filter, p.Page) {
		return
	}
	e.prefetch.Add(1)
	go func() {
		defer e.prefetch.Done()
		if _, err := e.loader.Load(context.Background(), p.Filter, p.Page); err != nil {
			e.logger.Printf("Prefetch of %s page %d failed: %v", p.Filter, p.Page, err)
		}
	}()
}
