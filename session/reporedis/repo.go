// Package reporedis persists the session record in Redis, for deployments
// where the console's session must survive the local filesystem or be shared
// across hosts.
package reporedis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/houseoftea/inventory-console/session"
)

var _ session.PersistenceRepo = (*Repo)(nil)

const defaultTimeout = 5 * time.Second

// Repo stores a single session record under a namespaced key.
type Repo struct {
	client    *redis.Client
	key       string
	ttl       time.Duration // 0 means no expiry
	opTimeout time.Duration
}

// Option defines a function type to modify the Repo instance.
type Option func(*Repo)

// WithTTL expires the stored record after d. Zero keeps it indefinitely.
func WithTTL(d time.Duration) Option {
	return func(r *Repo) {
		r.ttl = d
	}
}

// NewRepo initializes a Redis-backed persistence repo. The namespace keys the
// stored record, e.g. "inventory-console".
func NewRepo(client *redis.Client, namespace string, options ...Option) (*Repo, error) {
	if client == nil {
		return nil, errors.New("[reporedis.NewRepo] client is required")
	}
	if namespace == "" {
		return nil, errors.New("[reporedis.NewRepo] namespace is required")
	}
	repo := &Repo{
		client:    client,
		key:       namespace + ":session",
		opTimeout: defaultTimeout,
	}
	for _, opt := range options {
		opt(repo)
	}
	return repo, nil
}

func (r *Repo) Save(record *session.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[Repo.Save] marshal record")
	}
	ctx, cancel := r.opContext()
	defer cancel()
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[Repo.Save] redis set")
	}
	return nil
}

func (r *Repo) Load() (*session.Record, error) {
	ctx, cancel := r.opContext()
	defer cancel()
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Repo.Load] redis get")
	}
	var record session.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(session.CorruptRecordErr, "[Repo.Load] unmarshal record: %v", err)
	}
	return &record, nil
}

func (r *Repo) Delete() error {
	ctx, cancel := r.opContext()
	defer cancel()
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrap(err, "[Repo.Delete] redis del")
	}
	return nil
}

// opContext bounds each fire-and-forget mirror write; the in-memory session
// must never block on Redis.
func (r *Repo) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.opTimeout)
}
