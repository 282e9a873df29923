package repofile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/houseoftea/inventory-console/session"
	"github.com/houseoftea/inventory-console/session/repofile"
	"github.com/houseoftea/inventory-console/users"
)

func testRecord() *session.Record {
	return &session.Record{
		Version:      session.SchemaVersion,
		User:         &users.User{ID: 1, Username: "admin1508", Role: users.RoleAdmin},
		AccessToken:  "abc",
		RefreshToken: "def",
	}
}

func TestRoundTrip(t *testing.T) {
	repo, err := repofile.NewRepo(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(testRecord()))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, testRecord(), loaded)
}

func TestLoadMissingFile(t *testing.T) {
	repo, err := repofile.NewRepo(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo, err := repofile.NewRepo(path)
	require.NoError(t, err)

	_, err = repo.Load()
	require.ErrorIs(t, err, session.CorruptRecordErr)
}

func TestDelete(t *testing.T) {
	repo, err := repofile.NewRepo(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	// Deleting before anything was saved is fine.
	require.NoError(t, repo.Delete())

	require.NoError(t, repo.Save(testRecord()))
	require.NoError(t, repo.Delete())

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSealedRecords(t *testing.T) {
	key := make([]byte, 32)
	copy(key, "0123456789abcdef0123456789abcdef")

	t.Run("round-trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.bin")
		repo, err := repofile.NewRepo(path, repofile.WithEncryptionKey(key))
		require.NoError(t, err)

		require.NoError(t, repo.Save(testRecord()))

		// The raw file must not leak the token.
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotContains(t, string(raw), "abc")

		loaded, err := repo.Load()
		require.NoError(t, err)
		require.Equal(t, testRecord(), loaded)
	})

	t.Run("tampered file fails to load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.bin")
		repo, err := repofile.NewRepo(path, repofile.WithEncryptionKey(key))
		require.NoError(t, err)
		require.NoError(t, repo.Save(testRecord()))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		require.NoError(t, os.WriteFile(path, raw, 0o600))

		_, err = repo.Load()
		require.ErrorIs(t, err, session.CorruptRecordErr)
	})

	t.Run("short key is rejected", func(t *testing.T) {
		_, err := repofile.NewRepo("session.bin", repofile.WithEncryptionKey([]byte("short")))
		require.Error(t, err)
	})
}
