package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/crasofuentes-hub/irrl/evaluation"
	"github.com/crasofuentes-hub/irrl/ledger"
	"github.com/crasofuentes-hub/irrl/trustgraph"
)

type trustHandlers struct {
	l *ledger.Ledger
}

type upsertEvaluationRequest struct {
	From                   string     `json:"from"`
	To                     string     `json:"to"`
	RealmID                string     `json:"realmId"`
	Domain                 string     `json:"domain"`
	Score                  int        `json:"score"`
	Weight                 float64    `json:"weight"`
	Rationale              string     `json:"rationale"`
	SupportingAttestations []string   `json:"supportingAttestations"`
	ExpiresAt              *time.Time `json:"expiresAt"`
}

// handleEvaluations serves POST /trust/evaluations (upsert) and GET
// /trust/evaluations (filtered by from/to/realmId/domain).
func (h *trustHandlers) handleEvaluations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req upsertEvaluationRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		weight := req.Weight
		if weight == 0 {
			weight = 1
		}
		eval, err := h.l.Evaluations.Upsert(evaluation.UpsertInput{
			FromEntity: req.From, ToEntity: req.To, RealmID: req.RealmID, Domain: req.Domain,
			Score: req.Score, Weight: weight, Rationale: req.Rationale,
			SupportingAttestations: req.SupportingAttestations, ExpiresAt: req.ExpiresAt,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, eval)

	case http.MethodGet:
		q := r.URL.Query()
		realmID, domain := q.Get("realmId"), q.Get("domain")
		from, to := q.Get("from"), q.Get("to")

		switch {
		case from != "" && to != "":
			eval, found, err := h.l.Evaluations.Find(from, to, realmID, domain)
			if err != nil {
				writeError(w, err)
				return
			}
			if !found {
				writeJSON(w, http.StatusOK, []any{})
				return
			}
			writeJSON(w, http.StatusOK, []any{eval})
		case to != "":
			evals, err := h.l.Evaluations.ListIncoming(to, realmID, domain)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, paginate(evals, q))
		case from != "":
			evals, err := h.l.Evaluations.ListOutgoing(from, realmID, domain)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, paginate(evals, q))
		default:
			evals, err := h.l.Evaluations.ListByDomain(domain)
			if err != nil {
				writeError(w, err)
				return
			}
			if realmID != "" {
				filtered := evals[:0:0]
				for _, e := range evals {
					if e.RealmID == realmID {
						filtered = append(filtered, e)
					}
				}
				evals = filtered
			}
			writeJSON(w, http.StatusOK, paginate(evals, q))
		}

	default:
		writeMethodNotAllowed(w)
	}
}

// handleTransitive serves POST /trust/transitive.
func (h *trustHandlers) handleTransitive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var q trustgraph.Query
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.l.Transitive(q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleReputation serves GET /trust/reputation/{subject}?realm=&domain=&refresh=bool.
func (h *trustHandlers) handleReputation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	subject := strings.TrimPrefix(r.URL.Path, "/trust/reputation/")
	if subject == "" {
		writeError(w, apierrNotFound("subject"))
		return
	}
	q := r.URL.Query()
	refresh := q.Get("refresh") == "true"

	cache, err := h.l.Reputation.Get(subject, q.Get("realm"), q.Get("domain"), refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cache)
}
