package main

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/houseoftea/inventory-console/auth"
	"github.com/houseoftea/inventory-console/httpclient"
	"github.com/houseoftea/inventory-console/internal/config"
	"github.com/houseoftea/inventory-console/session"
	"github.com/houseoftea/inventory-console/session/repofile"
	"github.com/houseoftea/inventory-console/session/reporedis"
)

// runtime bundles the wired session/auth core shared by every subcommand.
type runtime struct {
	config     config.Config
	store      *session.Store
	api        *httpclient.Client
	controller *auth.Controller
	registry   *prometheus.Registry
}

func newRuntime() (*runtime, error) {
	c := config.New()

	repo, err := persistenceRepo(c)
	if err != nil {
		return nil, errors.Wrap(err, "[newRuntime] persistence repo")
	}

	store := session.NewStore(repo, session.WithLogger(log.With().Str("component", "session").Logger()))

	registry := prometheus.NewRegistry()
	api, err := httpclient.NewClient(
		c.GetAPIBaseURL(),
		store,
		store,
		httpclient.WithTimeout(c.GetRequestTimeout()),
		httpclient.WithLogger(log.With().Str("component", "httpclient").Logger()),
		httpclient.WithMetrics(registry),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newRuntime] http client")
	}

	controller, err := auth.NewController(store, api,
		auth.WithLogger(log.With().Str("component", "auth").Logger()))
	if err != nil {
		return nil, errors.Wrap(err, "[newRuntime] auth controller")
	}

	return &runtime{
		config:     c,
		store:      store,
		api:        api,
		controller: controller,
		registry:   registry,
	}, nil
}

// persistenceRepo selects Redis when configured, else the sealed local file.
func persistenceRepo(c config.Config) (session.PersistenceRepo, error) {
	if addr := c.GetRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return reporedis.NewRepo(client, c.GetStorageNamespace())
	}

	options := []repofile.Option{}
	if key := c.GetSessionKey(); key != nil {
		options = append(options, repofile.WithEncryptionKey(key))
	}
	return repofile.NewRepo(c.GetSessionFile(), options...)
}
