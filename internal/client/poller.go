package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// DefaultPollInterval is the client poll period.
const DefaultPollInterval = 60 * time.Second

// Poller checks for alerts once on start, after every login, and on each
// interval while logged in.
type Poller struct {
	fetcher   Fetcher
	cache     *ShownCache
	presenter Presenter
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	loggedIn bool
	login    chan struct{}
}

func NewPoller(fetcher Fetcher, cache *ShownCache, presenter Presenter, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:   fetcher,
		cache:     cache,
		presenter: presenter,
		interval:  interval,
		logger:    logger,
		login:     make(chan struct{}, 1),
	}
}

// Login installs token, restores the session's shown-set and requests an
// immediate check from Run.
func (p *Poller) Login(token string) {
	p.fetcher.SetToken(token)
	p.cache.Load()

	p.mu.Lock()
	p.loggedIn = token != ""
	p.mu.Unlock()

	select {
	case p.login <- struct{}{}:
	default:
	}
}

// Logout drops the token and clears the shown-set.
func (p *Poller) Logout() {
	p.mu.Lock()
	p.loggedIn = false
	p.mu.Unlock()

	p.fetcher.SetToken("")
	p.cache.Clear()
}

func (p *Poller) isLoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loggedIn
}

// CheckNow fetches every kind, drops already shown keys and presents the
// rest. It returns how many alerts were presented. A failed kind counts as
// empty.
func (p *Poller) CheckNow(ctx context.Context) int {
	if !p.isLoggedIn() {
		return 0
	}

	results := make([][]reminder.Alert, len(reminder.Kinds))
	var wg sync.WaitGroup
	for i, kind := range reminder.Kinds {
		wg.Add(1)
		go func(i int, kind reminder.Kind) {
			defer wg.Done()
			alerts, err := p.fetcher.FetchAlerts(ctx, kind)
			if err != nil {
				p.logger.Warn("alert check failed", "kind", kind, "error", err)
				return
			}
			results[i] = alerts
		}(i, kind)
	}
	wg.Wait()

	var merged []reminder.Alert
	for _, r := range results {
		merged = append(merged, r...)
	}

	fresh := p.cache.Process(merged)
	if len(fresh) > 0 {
		p.presenter.Present(ctx, fresh)
	}
	return len(fresh)
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Alert poller started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// A login made before Run is served by this first check.
	select {
	case <-p.login:
	default:
	}
	p.CheckNow(ctx)
	for {
		select {
		case <-p.login:
			p.CheckNow(ctx)
		case <-ticker.C:
			p.CheckNow(ctx)
		case <-ctx.Done():
			p.logger.Info("Alert poller stopped")
			return
		}
	}
}
