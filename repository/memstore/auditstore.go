package memstore

import "github.com/crasofuentes-hub/irrl/model"

type auditStore struct {
	s      *Store
	locked bool
}

func (a auditStore) Append(e model.AuditEvent) error {
	return withLockErr(a.s, a.locked, func() error {
		a.s.db.audit = append(a.s.db.audit, e)
		return nil
	})
}

func (a auditStore) Last() (model.AuditEvent, bool, error) {
	type result struct {
		event model.AuditEvent
		found bool
	}
	res, err := withLock(a.s, a.locked, func() (result, error) {
		n := len(a.s.db.audit)
		if n == 0 {
			return result{}, nil
		}
		return result{event: a.s.db.audit[n-1], found: true}, nil
	})
	return res.event, res.found, err
}

func (a auditStore) List() ([]model.AuditEvent, error) {
	return withLock(a.s, a.locked, func() ([]model.AuditEvent, error) {
		out := make([]model.AuditEvent, len(a.s.db.audit))
		copy(out, a.s.db.audit)
		return out, nil
	})
}
