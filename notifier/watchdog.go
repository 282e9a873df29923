package notifier

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/houseoftea/inventory-console/session"
)

const defaultCheckInterval = 30 * time.Second

// TokenChecker reports whether a bearer token has expired, judged locally
// from its claims. The token codec satisfies it.
type TokenChecker interface {
	Expired(rawToken string) bool
}

// Watchdog periodically decodes the stored access token so expiry is
// detected locally instead of waiting for the server's 401. It only ever
// raises the expiry flag; the server remains the authority for everything
// else.
type Watchdog struct {
	store    *session.Store
	checker  TokenChecker
	interval time.Duration
	logger   zerolog.Logger
}

// WatchdogOption defines a function type to modify the Watchdog instance.
type WatchdogOption func(*Watchdog)

// WithCheckInterval sets how often the token is re-examined.
func WithCheckInterval(d time.Duration) WatchdogOption {
	return func(w *Watchdog) {
		w.interval = d
	}
}

// WithWatchdogLogger sets the watchdog's logger.
func WithWatchdogLogger(logger zerolog.Logger) WatchdogOption {
	return func(w *Watchdog) {
		w.logger = logger
	}
}

// NewWatchdog initializes a Watchdog over the store and a token checker.
func NewWatchdog(store *session.Store, checker TokenChecker, options ...WatchdogOption) (*Watchdog, error) {
	if store == nil {
		return nil, errors.New("[NewWatchdog] session store is required")
	}
	if checker == nil {
		return nil, errors.New("[NewWatchdog] token checker is required")
	}

	watchdog := &Watchdog{
		store:    store,
		checker:  checker,
		interval: defaultCheckInterval,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(watchdog)
	}
	return watchdog, nil
}

// Run checks the token on every tick until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check flags the session as expired if the held token's exp claim has
// passed. Anonymous and already-flagged sessions are left alone.
func (w *Watchdog) Check() {
	snapshot := w.store.Snapshot()
	if !snapshot.Authenticated() || snapshot.IsExpired {
		return
	}
	if w.checker.Expired(snapshot.AccessToken) {
		w.logger.Info().Msg("access token expired locally")
		w.store.MarkExpired(true)
	}
}
