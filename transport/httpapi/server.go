package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/crasofuentes-hub/irrl/ledger"
)

// Server bundles the ledger and the per-resource handler groups that
// serve it over HTTP.
type Server struct {
	ledger *ledger.Ledger
	logger *slog.Logger

	realms    *realmHandlers
	attests   *attestationHandlers
	verify    *verifyHandlers
	trust     *trustHandlers
	proofs    *proofHandlers
	resolvers *resolverHandlers
	limiters  *clientLimiters
}

// Options configures a Server beyond its required Ledger.
type Options struct {
	Logger       *slog.Logger
	RateLimitRPS float64 // requests/sec per client IP; 0 selects DefaultOptions' rate
	RateBurst    int
}

// DefaultOptions is what NewServer uses when Options is the zero value.
func DefaultOptions() Options {
	return Options{RateLimitRPS: 20, RateBurst: 40}
}

// NewServer constructs a Server over l.
func NewServer(l *ledger.Ledger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RateLimitRPS == 0 {
		opts.RateLimitRPS = DefaultOptions().RateLimitRPS
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = DefaultOptions().RateBurst
	}

	return &Server{
		ledger:    l,
		logger:    opts.Logger,
		realms:    &realmHandlers{l: l},
		attests:   &attestationHandlers{l: l},
		verify:    &verifyHandlers{l: l},
		trust:     &trustHandlers{l: l},
		proofs:    &proofHandlers{l: l},
		resolvers: &resolverHandlers{l: l},
		limiters:  newClientLimiters(opts.RateLimitRPS, opts.RateBurst),
	}
}

// Handler returns the fully wired http.Handler: routes plus the
// rate-limit and request-logging middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/realms", s.realms.handleCollection)
	mux.HandleFunc("/realms/", s.realms.handleItem)

	mux.HandleFunc("/attestations", s.attests.handleCollection)
	mux.HandleFunc("/attestations/", s.attests.handleItem)

	mux.HandleFunc("/verify/", s.verify.handle)

	mux.HandleFunc("/trust/evaluations", s.trust.handleEvaluations)
	mux.HandleFunc("/trust/transitive", s.trust.handleTransitive)
	mux.HandleFunc("/trust/reputation/", s.trust.handleReputation)

	mux.HandleFunc("/proofs/generate", s.proofs.handleGenerate)
	mux.HandleFunc("/proofs/verify", s.proofs.handleVerify)
	mux.HandleFunc("/proofs/evidence-proof", s.proofs.handleEvidenceProof)
	mux.HandleFunc("/proofs/verify-evidence", s.proofs.handleVerifyEvidence)
	mux.HandleFunc("/proofs", s.proofs.handleList)
	mux.HandleFunc("/proofs/", s.proofs.handleGet)

	mux.HandleFunc("/resolvers", s.resolvers.handleCollection)
	mux.HandleFunc("/resolvers/", s.resolvers.handleItem)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/info", s.handleInfo)

	var h http.Handler = mux
	h = rateLimit(s.limiters, h)
	h = logRequests(s.logger, h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Info())
}
