package httpapi

import (
	"net/http"
	"strings"

	"github.com/crasofuentes-hub/irrl/ledger"
)

type verifyHandlers struct {
	l *ledger.Ledger
}

type verifyRequest struct {
	Force bool `json:"force"`
}

type verifyResponse struct {
	Attestation any `json:"attestation"`
	Run         any `json:"run"`
}

// handle serves POST /verify/{attestationId} and GET
// /verify/{attestationId}/history.
func (h *verifyHandlers) handle(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/verify/")
	if rest == "" {
		writeError(w, apierrNotFound("attestation"))
		return
	}

	if id, ok := strings.CutSuffix(rest, "/history"); ok {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		runs, err := h.l.Attestations.History(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, runs)
		return
	}

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req verifyRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	at, run, err := h.l.Attestations.Verify(rest, req.Force, "api")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Attestation: at, Run: run})
}
