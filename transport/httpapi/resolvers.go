package httpapi

import (
	"net/http"
	"strings"

	"github.com/crasofuentes-hub/irrl/apierr"
	"github.com/crasofuentes-hub/irrl/ledger"
	"github.com/crasofuentes-hub/irrl/model"
)

type resolverHandlers struct {
	l *ledger.Ledger
}

type registerResolverRequest struct {
	model.ResolverMetadata
}

// handleCollection serves GET /resolvers (list) and POST /resolvers
// (register a metadata-only descriptor).
func (h *resolverHandlers) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.l.Resolvers.List())

	case http.MethodPost:
		var req registerResolverRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := h.l.Resolvers.RegisterDescriptor(req.ResolverMetadata); err != nil {
			writeError(w, apierr.New(apierr.CodeAlreadyExists, err.Error()))
			return
		}
		writeJSON(w, http.StatusCreated, req.ResolverMetadata)

	default:
		writeMethodNotAllowed(w)
	}
}

type testResolverRequest struct {
	Evidence map[string]any `json:"evidence"`
}

// handleItem serves GET /resolvers/{id}?version=, POST
// /resolvers/{id}/deprecate, and POST /resolvers/{id}/test.
func (h *resolverHandlers) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/resolvers/")
	if rest == "" {
		writeError(w, apierrNotFound("resolver"))
		return
	}

	if id, ok := strings.CutSuffix(rest, "/deprecate"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if err := h.l.Resolvers.Deprecate(id); err != nil {
			writeError(w, apierrNotFound("resolver"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deprecated": true})
		return
	}

	if id, ok := strings.CutSuffix(rest, "/test"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req testResolverRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		resolver, found := h.l.Resolvers.Lookup(id)
		if !found {
			writeError(w, apierrNotFound("resolver"))
			return
		}
		if valid, errs := resolver.ValidateEvidence(req.Evidence); !valid {
			writeJSON(w, http.StatusOK, map[string]any{"valid": false, "errors": errs})
			return
		}
		result, err := resolver.Verify(req.Evidence)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id := rest
	if version := r.URL.Query().Get("version"); version != "" {
		id = id + "@" + version
	}
	resolver, found := h.l.Resolvers.Lookup(id)
	if !found {
		writeError(w, apierrNotFound("resolver"))
		return
	}
	writeJSON(w, http.StatusOK, resolver.Metadata())
}
