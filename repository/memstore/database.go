package memstore

import "github.com/crasofuentes-hub/irrl/model"

type database struct {
	realms       map[string]model.Realm
	attestations map[string]model.Attestation
	runs         map[string]model.VerificationRun
	runsByAttn   map[string][]string
	evaluations  map[string]model.Evaluation
	evalKeyToID  map[string]string
	reputation   map[string]model.ReputationCache
	proofs       map[string]model.ReputationProof
	proofLatest  map[string]string
	audit        []model.AuditEvent
}

func newDatabase() database {
	return database{
		realms:       make(map[string]model.Realm),
		attestations: make(map[string]model.Attestation),
		runs:         make(map[string]model.VerificationRun),
		runsByAttn:   make(map[string][]string),
		evaluations:  make(map[string]model.Evaluation),
		evalKeyToID:  make(map[string]string),
		reputation:   make(map[string]model.ReputationCache),
		proofs:       make(map[string]model.ReputationProof),
		proofLatest:  make(map[string]string),
	}
}

func (d database) clone() database {
	out := newDatabase()
	for k, v := range d.realms {
		out.realms[k] = v
	}
	for k, v := range d.attestations {
		out.attestations[k] = v
	}
	for k, v := range d.runs {
		out.runs[k] = v
	}
	for k, v := range d.runsByAttn {
		cp := make([]string, len(v))
		copy(cp, v)
		out.runsByAttn[k] = cp
	}
	for k, v := range d.evaluations {
		out.evaluations[k] = v
	}
	for k, v := range d.evalKeyToID {
		out.evalKeyToID[k] = v
	}
	for k, v := range d.reputation {
		out.reputation[k] = v
	}
	for k, v := range d.proofs {
		out.proofs[k] = v
	}
	for k, v := range d.proofLatest {
		out.proofLatest[k] = v
	}
	out.audit = append(out.audit, d.audit...)
	return out
}

func evalKey(from, to, realmID, domain string) string {
	return from + "\x00" + to + "\x00" + realmID + "\x00" + domain
}

func reputationKey(subject, realmID, domain string) string {
	return subject + "\x00" + realmID + "\x00" + domain
}
