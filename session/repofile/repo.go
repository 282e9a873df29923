// Package repofile persists the session record to a local file, the
// client-side equivalent of browser storage. Records can optionally be
// sealed with ChaCha20-Poly1305 so credentials are not readable at rest.
package repofile

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/houseoftea/inventory-console/session"
)

var _ session.PersistenceRepo = (*Repo)(nil)

// Repo stores a single session record at a fixed path.
type Repo struct {
	path string
	aead cipher.AEAD
}

// Option defines a function type to modify the Repo instance.
type Option func(*Repo) error

// WithEncryptionKey seals records with ChaCha20-Poly1305. The key must be
// exactly 32 bytes.
func WithEncryptionKey(key []byte) Option {
	return func(r *Repo) error {
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return errors.Wrap(err, "[repofile.WithEncryptionKey] invalid key")
		}
		r.aead = aead
		return nil
	}
}

// NewRepo initializes a file-backed persistence repo at path.
func NewRepo(path string, options ...Option) (*Repo, error) {
	if path == "" {
		return nil, errors.New("[repofile.NewRepo] path is required")
	}
	repo := &Repo{path: path}
	for _, opt := range options {
		if err := opt(repo); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Save writes the record atomically via a temp file and rename.
func (r *Repo) Save(record *session.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[Repo.Save] marshal record")
	}

	if r.aead != nil {
		data, err = r.seal(data)
		if err != nil {
			return errors.Wrap(err, "[Repo.Save] seal record")
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[Repo.Save] create storage dir")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[Repo.Save] write temp file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[Repo.Save] rename temp file")
	}
	return nil
}

// Load reads the stored record. A missing file means no prior session;
// an unreadable or tampered file is an error the caller treats the same way.
func (r *Repo) Load() (*session.Record, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Repo.Load] read file")
	}

	if r.aead != nil {
		data, err = r.open(data)
		if err != nil {
			return nil, errors.Wrapf(session.CorruptRecordErr, "[Repo.Load] open sealed record: %v", err)
		}
	}

	var record session.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(session.CorruptRecordErr, "[Repo.Load] unmarshal record: %v", err)
	}
	return &record, nil
}

// Delete removes the stored record. A missing file is not an error.
func (r *Repo) Delete() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Repo.Delete] remove file")
	}
	return nil
}

func (r *Repo) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, r.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "rand.Read")
	}
	return r.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (r *Repo) open(sealed []byte) ([]byte, error) {
	if len(sealed) < r.aead.NonceSize() {
		return nil, errors.New("sealed record too short")
	}
	nonce, ciphertext := sealed[:r.aead.NonceSize()], sealed[r.aead.NonceSize():]
	plaintext, err := r.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "aead.Open")
	}
	return plaintext, nil
}
