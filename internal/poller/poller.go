package poller

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher re-reads the feeds of one category into its snapshot.
type Refresher interface {
	Categories() []string
	Refresh(ctx context.Context, category string) (int, error)
}

// Poller keeps feed snapshots warm so that proxy requests rarely wait on
// a feed download.
type Poller struct {
	source       Refresher
	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	lastPolled   map[string]time.Time
	isPolling    bool
}

func New(source Refresher, pollInterval time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		source:       source,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
		lastPolled:   make(map[string]time.Time),
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = true
	p.mu.Unlock()

	log.Printf("Starting feed poller with interval: %v", p.pollInterval)

	p.wg.Add(1)
	go p.pollLoop()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isPolling {
		p.mu.Unlock()
		return
	}
	p.isPolling = false
	p.mu.Unlock()

	log.Println("Stopping feed poller...")
	p.cancel()
	p.wg.Wait()
	log.Println("Feed poller stopped")
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Poll immediately on start
	p.pollAll()

	for {
		select {
		case <-ticker.C:
			p.pollAll()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Poller) pollAll() {
	var wg sync.WaitGroup
	for _, category := range p.source.Categories() {
		wg.Add(1)
		go func(category string) {
			defer wg.Done()
			p.pollCategory(category)
		}(category)
	}
	wg.Wait()
}

func (p *Poller) pollCategory(category string) {
	count, err := p.source.Refresh(p.ctx, category)
	if err != nil {
		if p.ctx.Err() == nil {
			log.Printf("Error refreshing feeds for category '%s': %v", category, err)
		}
		return
	}

	p.mu.Lock()
	p.lastPolled[category] = time.Now()
	p.mu.Unlock()
	log.Printf("Refreshed %d articles for category '%s'", count, category)
}

func (p *Poller) IsPolling() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPolling
}

// LastPolled returns when a category was last refreshed successfully.
func (p *Poller) LastPolled(category string) (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.lastPolled[category]
	return t, ok
}
