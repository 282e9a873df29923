package reporedis_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/houseoftea/inventory-console/session"
	"github.com/houseoftea/inventory-console/session/reporedis"
	"github.com/houseoftea/inventory-console/users"
)

func setupRepo(t *testing.T) *reporedis.Repo {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo, err := reporedis.NewRepo(client, "inventory-console")
	require.NoError(t, err)
	return repo
}

func testRecord() *session.Record {
	return &session.Record{
		Version:      session.SchemaVersion,
		User:         &users.User{ID: 1, Username: "admin1508", Role: users.RoleAdmin},
		AccessToken:  "abc",
		RefreshToken: "def",
	}
}

func TestRoundTrip(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Save(testRecord()))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, testRecord(), loaded)
}

func TestLoadMissingRecord(t *testing.T) {
	repo := setupRepo(t)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestLoadCorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo, err := reporedis.NewRepo(client, "inventory-console")
	require.NoError(t, err)

	require.NoError(t, mr.Set("inventory-console:session", "{not json"))

	_, err = repo.Load()
	require.ErrorIs(t, err, session.CorruptRecordErr)
}

func TestDelete(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, repo.Save(testRecord()))

	require.NoError(t, repo.Delete())

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)

	// Deleting again is not an error.
	require.NoError(t, repo.Delete())
}

func TestNewRepoValidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	_, err := reporedis.NewRepo(nil, "ns")
	require.Error(t, err)

	_, err = reporedis.NewRepo(client, "")
	require.Error(t, err)
}
