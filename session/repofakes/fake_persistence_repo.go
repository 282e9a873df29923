package repofakes

import (
	"sync"

	"github.com/houseoftea/inventory-console/session"
)

var _ session.PersistenceRepo = (*FakePersistenceRepo)(nil)

// FakePersistenceRepo is an in-memory PersistenceRepo for tests. Errors can
// be injected per operation to exercise the store's failure handling.
type FakePersistenceRepo struct {
	lock   sync.Mutex
	record *session.Record

	SaveErr   error
	LoadErr   error
	DeleteErr error

	Saves   int
	Deletes int
}

func NewFakePersistenceRepo() *FakePersistenceRepo {
	return &FakePersistenceRepo{}
}

func (r *FakePersistenceRepo) Save(record *session.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	copied := *record
	r.record = &copied
	r.Saves++
	return nil
}

func (r *FakePersistenceRepo) Load() (*session.Record, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.record == nil {
		return nil, nil
	}
	copied := *r.record
	return &copied, nil
}

func (r *FakePersistenceRepo) Delete() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.record = nil
	r.Deletes++
	return nil
}

// Stored returns the currently persisted record, or nil.
func (r *FakePersistenceRepo) Stored() *session.Record {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.record == nil {
		return nil
	}
	copied := *r.record
	return &copied
}
