package memstore

import (
	"sort"

	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/repository"
)

type realmStore struct {
	s      *Store
	locked bool
}

func (r realmStore) Create(realm model.Realm) error {
	return withLockErr(r.s, r.locked, func() error {
		if _, exists := r.s.db.realms[realm.ID]; exists {
			return repository.ErrAlreadyExists
		}
		r.s.db.realms[realm.ID] = realm
		return nil
	})
}

func (r realmStore) Get(id string) (model.Realm, error) {
	return withLock(r.s, r.locked, func() (model.Realm, error) {
		realm, ok := r.s.db.realms[id]
		if !ok {
			return model.Realm{}, repository.ErrNotFound
		}
		return realm, nil
	})
}

func (r realmStore) GetByPath(path string) (model.Realm, error) {
	return withLock(r.s, r.locked, func() (model.Realm, error) {
		for _, realm := range r.s.db.realms {
			if realm.Path == path {
				return realm, nil
			}
		}
		return model.Realm{}, repository.ErrNotFound
	})
}

func (r realmStore) Update(realm model.Realm) error {
	return withLockErr(r.s, r.locked, func() error {
		if _, exists := r.s.db.realms[realm.ID]; !exists {
			return repository.ErrNotFound
		}
		r.s.db.realms[realm.ID] = realm
		return nil
	})
}

func (r realmStore) Children(parentID string) ([]model.Realm, error) {
	return withLock(r.s, r.locked, func() ([]model.Realm, error) {
		var out []model.Realm
		for _, realm := range r.s.db.realms {
			if realm.Parent != nil && *realm.Parent == parentID {
				out = append(out, realm)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	})
}

func (r realmStore) List() ([]model.Realm, error) {
	return withLock(r.s, r.locked, func() ([]model.Realm, error) {
		out := make([]model.Realm, 0, len(r.s.db.realms))
		for _, realm := range r.s.db.realms {
			out = append(out, realm)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	})
}

func (r realmStore) Delete(id string) error {
	return withLockErr(r.s, r.locked, func() error {
		if _, exists := r.s.db.realms[id]; !exists {
			return repository.ErrNotFound
		}
		delete(r.s.db.realms, id)
		return nil
	})
}
