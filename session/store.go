package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/houseoftea/inventory-console/users"
)

// Store guards the Session record and exposes the only operations that may
// mutate it. It is constructed and injected explicitly - never a package
// global - so HttpClient, the auth controller and the route guards can be
// wired against substitutes in tests.
type Store struct {
	lock     sync.RWMutex
	current  Session
	repo     PersistenceRepo
	logger   zerolog.Logger
	watchers []chan Session
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore initializes a Store, rehydrating from the persistence repo before
// the first read. A nil repo means the session lives in memory only.
func NewStore(repo PersistenceRepo, options ...StoreOption) *Store {
	store := &Store{
		repo:   repo,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	store.hydrate()
	return store
}

// Snapshot returns a copy of the current session. Broken user/token pairings
// are reported as anonymous.
func (s *Store) Snapshot() Session {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current.anonymized()
}

// AccessToken returns the current bearer credential, or "" when anonymous.
func (s *Store) AccessToken() string {
	return s.Snapshot().AccessToken
}

// BeginLogin marks a login attempt as in flight and clears the previous
// attempt's error. No other field changes.
func (s *Store) BeginLogin() {
	s.mutate(func(session *Session) {
		session.IsLoading = true
		session.Err = ""
	})
}

// CompleteLogin populates the session from a successful login response.
func (s *Store) CompleteLogin(user *users.User, accessToken, refreshToken string) {
	s.mutate(func(session *Session) {
		session.IsLoading = false
		session.User = user
		session.AccessToken = accessToken
		session.RefreshToken = refreshToken
		session.Err = ""
		session.IsExpired = false
	})
}

// FailLogin records a failed attempt. The prior anonymous state is preserved.
func (s *Store) FailLogin(message string) {
	s.mutate(func(session *Session) {
		session.IsLoading = false
		session.Err = message
	})
}

// MarkExpired flags the current token as declared dead. Flagging an
// anonymous session is a no-op - the expiry flag only makes sense while a
// token is held.
func (s *Store) MarkExpired(flag bool) {
	s.mutate(func(session *Session) {
		if flag && session.AccessToken == "" {
			return
		}
		session.IsExpired = flag
	})
}

// Clear resets the session to its empty initial state and deletes the
// persisted copy. Clearing twice yields the same empty session as once.
func (s *Store) Clear() {
	s.lock.Lock()
	s.current = Session{}
	snapshot := s.current
	s.lock.Unlock()

	if s.repo != nil {
		if err := s.repo.Delete(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete persisted session")
		}
	}
	s.notify(snapshot)
}

// Watch returns a channel that receives the session after every mutation.
// Delivery is latest-wins: a slow receiver observes the most recent state,
// not every intermediate one.
func (s *Store) Watch() <-chan Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	ch := make(chan Session, 1)
	s.watchers = append(s.watchers, ch)
	return ch
}

func (s *Store) mutate(apply func(*Session)) {
	s.lock.Lock()
	apply(&s.current)
	snapshot := s.current.anonymized()
	s.lock.Unlock()

	s.persist(snapshot)
	s.notify(snapshot)
}

// persist mirrors the serializable subset of the session to durable storage.
// Failures are logged, never surfaced: losing the mirror costs a re-login
// after restart, nothing more.
func (s *Store) persist(snapshot Session) {
	if s.repo == nil {
		return
	}
	record := &Record{
		Version:      SchemaVersion,
		User:         snapshot.User,
		AccessToken:  snapshot.AccessToken,
		RefreshToken: snapshot.RefreshToken,
	}
	if err := s.repo.Save(record); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist session")
	}
}

func (s *Store) hydrate() {
	if s.repo == nil {
		return
	}
	record, err := s.repo.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable persisted session")
		return
	}
	if record == nil {
		return
	}
	if record.Version != SchemaVersion {
		s.logger.Warn().
			Int("stored_version", record.Version).
			Int("schema_version", SchemaVersion).
			Msg("discarding persisted session with mismatched schema version")
		return
	}
	s.current = Session{
		User:         record.User,
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
	}.anonymized()
}

func (s *Store) notify(snapshot Session) {
	s.lock.RLock()
	watchers := s.watchers
	s.lock.RUnlock()

	for _, ch := range watchers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale update and replace it with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
