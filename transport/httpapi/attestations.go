package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/crasofuentes-hub/irrl/attestation"
	"github.com/crasofuentes-hub/irrl/ledger"
)

type attestationHandlers struct {
	l *ledger.Ledger
}

type createAttestationRequest struct {
	RealmID    string         `json:"realmId"`
	Attester   string         `json:"attester"`
	Subject    string         `json:"subject"`
	Claim      string         `json:"claim"`
	ResolverID string         `json:"resolverId"`
	Evidence   map[string]any `json:"evidence"`
	References []string       `json:"references"`
	ExpiresAt  *time.Time     `json:"expiresAt"`
}

func (h *attestationHandlers) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createAttestationRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		at, err := h.l.Attestations.Create(attestation.CreateInput{
			RealmID: req.RealmID, Attester: req.Attester, Subject: req.Subject, Claim: req.Claim,
			ResolverID: req.ResolverID, Evidence: req.Evidence, References: req.References, ExpiresAt: req.ExpiresAt,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, at)

	case http.MethodGet:
		q := r.URL.Query()
		all, err := h.l.Attestations.List(q.Get("subject"), q.Get("realm"))
		if err != nil {
			writeError(w, err)
			return
		}
		if status := q.Get("status"); status != "" {
			filtered := all[:0:0]
			for _, at := range all {
				if string(at.Status) == status {
					filtered = append(filtered, at)
				}
			}
			all = filtered
		}
		writeJSON(w, http.StatusOK, paginate(all, q))

	default:
		writeMethodNotAllowed(w)
	}
}

// handleItem serves GET /attestations/{id} and POST /attestations/{id}/revoke.
func (h *attestationHandlers) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/attestations/")
	if rest == "" {
		writeError(w, apierrNotFound("attestation"))
		return
	}

	if id, ok := strings.CutSuffix(rest, "/revoke"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req struct {
			Actor string `json:"actor"`
		}
		_ = decodeJSON(r, &req) // actor is optional; malformed/empty body is fine

		revoked, err := h.l.Attestations.Revoke(id, req.Actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, revoked)
		return
	}

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	at, err := h.l.Attestations.Get(rest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, at)
}
