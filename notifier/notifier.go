// Package notifier surfaces the forced re-authentication gate. When the
// server declares the token dead the only way forward is logging out; the
// prompt cannot be dismissed any other way.
package notifier

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/houseoftea/inventory-console/session"
)

// PromptMessage is the text shown on the blocking expiry prompt.
const PromptMessage = "Your session has expired. Please log in again to continue."

// Logouter runs the logout flow and returns the route to land on. The auth
// controller satisfies it.
type Logouter interface {
	Logout(ctx context.Context) string
}

// Prompt is one session-expiry event. Confirm is its only action; the prompt
// disappears as a consequence of the session being cleared.
type Prompt struct {
	logout Logouter
}

// Message returns the prompt text.
func (p Prompt) Message() string {
	return PromptMessage
}

// Confirm logs the user out and returns the landing route.
func (p Prompt) Confirm(ctx context.Context) string {
	return p.logout.Logout(ctx)
}

// Notifier watches the session store and emits a Prompt on each transition
// into the expired state.
type Notifier struct {
	store   *session.Store
	logout  Logouter
	logger  zerolog.Logger
	prompts chan Prompt
}

// NotifierOption defines a function type to modify the Notifier instance.
type NotifierOption func(*Notifier)

// WithLogger sets the notifier's logger.
func WithLogger(logger zerolog.Logger) NotifierOption {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// NewNotifier initializes a Notifier over the store and logout flow.
func NewNotifier(store *session.Store, logout Logouter, options ...NotifierOption) (*Notifier, error) {
	if store == nil {
		return nil, errors.New("[NewNotifier] session store is required")
	}
	if logout == nil {
		return nil, errors.New("[NewNotifier] logout flow is required")
	}

	notifier := &Notifier{
		store:   store,
		logout:  logout,
		logger:  zerolog.Nop(),
		prompts: make(chan Prompt, 1),
	}
	for _, opt := range options {
		opt(notifier)
	}
	return notifier, nil
}

// Prompts returns the channel expiry prompts are delivered on.
func (n *Notifier) Prompts() <-chan Prompt {
	return n.prompts
}

// Run watches the store until ctx is cancelled, emitting one Prompt per
// false-to-true edge of the expired flag. A session already expired at start
// prompts immediately.
func (n *Notifier) Run(ctx context.Context) error {
	updates := n.store.Watch()

	wasExpired := false
	if n.store.Snapshot().IsExpired {
		n.emit()
		wasExpired = true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot := <-updates:
			if snapshot.IsExpired && !wasExpired {
				n.emit()
			}
			wasExpired = snapshot.IsExpired
		}
	}
}

func (n *Notifier) emit() {
	n.logger.Info().Msg("session expired, prompting for re-authentication")
	select {
	case n.prompts <- Prompt{logout: n.logout}:
	default:
		// A prompt is already pending; one gate is enough.
	}
}
