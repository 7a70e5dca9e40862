package memstore

import "github.com/crasofuentes-hub/irrl/model"

type reputationStore struct {
	s      *Store
	locked bool
}

func (r reputationStore) Get(subject, realmID, domain string) (model.ReputationCache, bool, error) {
	type result struct {
		cache model.ReputationCache
		found bool
	}
	res, err := withLock(r.s, r.locked, func() (result, error) {
		c, ok := r.s.db.reputation[reputationKey(subject, realmID, domain)]
		return result{cache: c, found: ok}, nil
	})
	return res.cache, res.found, err
}

func (r reputationStore) Put(c model.ReputationCache) error {
	return withLockErr(r.s, r.locked, func() error {
		r.s.db.reputation[reputationKey(c.Subject, c.RealmID, c.Domain)] = c
		return nil
	})
}

func (r reputationStore) Invalidate(subject, realmID, domain string) error {
	return withLockErr(r.s, r.locked, func() error {
		delete(r.s.db.reputation, reputationKey(subject, realmID, domain))
		return nil
	})
}

func (r reputationStore) DeleteByRealm(realmID string) error {
	return withLockErr(r.s, r.locked, func() error {
		for key, c := range r.s.db.reputation {
			if c.RealmID == realmID {
				delete(r.s.db.reputation, key)
			}
		}
		return nil
	})
}
