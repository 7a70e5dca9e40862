// Package ledger wires the Contextual Reputation & Trust Ledger's
// components (C0–C11) into a single service, the entry point
// transport/httpapi and cmd/irrl-server depend on.
//
// Grounded on the teacher's cmd/xdao-catf main.go, which constructs its
// catf/crof/resolver/storage collaborators inline at the top of run();
// Ledger generalizes that ad hoc wiring into a reusable constructor so
// both the HTTP server and the operator CLI can share one assembly path.
package ledger

import (
	"time"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/attestation"
	"github.com/crasofuentes-hub/irrl/audit"
	"github.com/crasofuentes-hub/irrl/evaluation"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/proof"
	"github.com/crasofuentes-hub/irrl/realm"
	"github.com/crasofuentes-hub/irrl/repository"
	"github.com/crasofuentes-hub/irrl/repository/evidenceblob"
	"github.com/crasofuentes-hub/irrl/repository/memstore"
	"github.com/crasofuentes-hub/irrl/reputation"
	"github.com/crasofuentes-hub/irrl/resolverreg"
	"github.com/crasofuentes-hub/irrl/resolvers"
	"github.com/crasofuentes-hub/irrl/trustgraph"
)

// Ledger aggregates every component service over one Repository and one
// Resolver Registry.
type Ledger struct {
	Repo       repository.Repository
	Resolvers  *resolverreg.Registry
	Audit      *audit.Log
	Realms     *realm.Store
	Attestations *attestation.Manager
	Evaluations  *evaluation.Store
	Reputation   *reputation.Service
	Proofs       *proof.Service
}

// Config is the signing/identity material a Ledger needs; everything
// else (repository, resolver registry) is constructed in-process.
type Config struct {
	SigningKeyPEM string
	PublicKeyPEM  string
	Issuer        string
	EnableAudit   bool
}

// New constructs a Ledger over an in-memory repository, registers the
// built-in resolvers, and wires evaluation writes to invalidate the
// reputation cache.
func New(cfg Config) (*Ledger, error) {
	repo := memstore.New()

	reg := resolverreg.New()
	if err := resolvers.RegisterBuiltins(reg); err != nil {
		return nil, apierr.Internal(err)
	}

	var auditOpts []audit.Option
	if !cfg.EnableAudit {
		auditOpts = append(auditOpts, audit.Disabled())
	}
	auditLog := audit.New(repo.AuditEvents(), auditOpts...)

	realms := realm.New(repo)
	evidenceBlobs := evidenceblob.NewMemStore()
	attestations := attestation.New(repo, reg, auditLog, evidenceBlobs, cfg.SigningKeyPEM)
	evaluations := evaluation.New(repo, cfg.SigningKeyPEM)
	reputationSvc := reputation.New(repo)
	evaluations.OnWrite(reputationSvc.Invalidate)
	proofSvc := proof.New(repo, auditLog, cfg.SigningKeyPEM, cfg.PublicKeyPEM, cfg.Issuer)

	return &Ledger{
		Repo:         repo,
		Resolvers:    reg,
		Audit:        auditLog,
		Realms:       realms,
		Attestations: attestations,
		Evaluations:  evaluations,
		Reputation:   reputationSvc,
		Proofs:       proofSvc,
	}, nil
}

// Transitive runs a Trust Graph Engine query over the bounded edge set
// for q.Domain, loaded fresh on every call per the resource policy (§5):
// the graph lives only for the duration of one query.
func (l *Ledger) Transitive(q trustgraph.Query) (trustgraph.Result, error) {
	evals, err := l.Evaluations.ListByDomain(q.Domain)
	if err != nil {
		return trustgraph.Result{}, err
	}
	graph := trustgraph.Build(evals, time.Now().UTC())
	return graph.Transitive(q), nil
}

// ScanExpired sweeps every non-terminal attestation past its expiresAt
// into the expired state. Intended to run on a periodic timer owned by
// the caller (cmd/irrl-server).
func (l *Ledger) ScanExpired() (int, error) {
	return l.Attestations.ScanExpired()
}

// Info summarizes the running instance for GET /info.
type Info struct {
	Version        string   `json:"version"`
	ResolverCount  int      `json:"resolverCount"`
	RegisteredIDs  []string `json:"registeredResolverIds"`
}

// Info returns a snapshot of the registered resolver catalog.
func (l *Ledger) Info() Info {
	meta := l.Resolvers.List()
	ids := make([]string, 0, len(meta))
	seen := make(map[string]bool)
	for _, m := range meta {
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}
	return Info{Version: model.ReputationProofVersion, ResolverCount: len(meta), RegisteredIDs: ids}
}
