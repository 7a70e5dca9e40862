package httpapi

import (
	"net/http"
	"strings"

	"github.com/crasofuentes-hub/irrl/ledger"
	"github.com/crasofuentes-hub/irrl/merkle"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/proof"
)

type proofHandlers struct {
	l *ledger.Ledger
}

type generateProofRequest struct {
	Subject      string `json:"subject"`
	RealmID      string `json:"realmId"`
	Domain       string `json:"domain"`
	ValidForDays int    `json:"validForDays"`
}

func (h *proofHandlers) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req generateProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.l.Proofs.Generate(proof.GenerateInput{
		Subject: req.Subject, RealmID: req.RealmID, Domain: req.Domain, ValidForDays: req.ValidForDays,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"proofId": result.ProofID, "proof": result.Proof, "evidenceCount": result.EvidenceCount,
	})
}

type verifyProofRequest struct {
	Proof model.ReputationProof `json:"proof"`
}

func (h *proofHandlers) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req verifyProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	verdict := h.l.Proofs.VerifyWithOwnKey(req.Proof)
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":          verdict.Valid(),
		"signatureValid": verdict.SignatureValid,
		"expired":        !verdict.NotExpired,
		"issuerTrusted":  verdict.IssuerKnown,
	})
}

type evidenceProofRequest struct {
	ProofID    string `json:"proofId"`
	EvidenceID string `json:"evidenceId"`
}

func (h *proofHandlers) handleEvidenceProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req evidenceProofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	mp, err := h.l.Proofs.EvidenceProof(req.ProofID, req.EvidenceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mp)
}

type verifyEvidenceRequest struct {
	MerkleProof  merkle.Proof `json:"merkleProof"`
	ExpectedRoot string       `json:"expectedRoot"`
}

func (h *proofHandlers) handleVerifyEvidence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req verifyEvidenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	valid := proof.VerifyEvidence(req.MerkleProof, req.ExpectedRoot)
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *proofHandlers) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/proofs/")
	if id == "" {
		writeError(w, apierrNotFound("proof"))
		return
	}
	p, err := h.l.Proofs.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *proofHandlers) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	records, err := h.l.Proofs.List()
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	subject, realmID, domain := q.Get("subject"), q.Get("realmId"), q.Get("domain")
	filtered := records[:0:0]
	for _, rec := range records {
		if subject != "" && rec.Proof.Subject != subject {
			continue
		}
		if realmID != "" && rec.Proof.RealmID != realmID {
			continue
		}
		if domain != "" && rec.Proof.Domain != domain {
			continue
		}
		filtered = append(filtered, rec)
	}
	writeJSON(w, http.StatusOK, paginate(filtered, q))
}
