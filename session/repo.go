package session

import (
	"github.com/pkg/errors"

	"github.com/houseoftea/inventory-console/users"
)

// CorruptRecordErr marks a stored record that could not be decoded. The
// store treats it like a missing record; callers that care can still
// distinguish it with errors.Is.
var CorruptRecordErr = errors.New("stored session record is corrupt")

// SchemaVersion tags every persisted record. Loading a record written with a
// different version is treated as having no prior session, never as a fault.
const SchemaVersion = 1

// Record is the serializable subset of a Session. Transient fields
// (IsLoading, Err, IsExpired) are deliberately absent and rehydrate to their
// defaults.
type Record struct {
	Version      int         `json:"version"`
	User         *users.User `json:"user,omitempty"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

// PersistenceRepo defines the interface for durable session storage. Writes
// mirror in-memory mutations and are strictly ordered after them.
type PersistenceRepo interface {
	// Save writes the record, replacing any previous one
	Save(record *Record) error

	// Load retrieves the stored record, or (nil, nil) when none exists
	Load() (*Record, error)

	// Delete removes the stored record; deleting a missing record is not an error
	Delete() error
}
