package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/crasofuentes-hub/irrl/ledger"
	"github.com/crasofuentes-hub/irrl/model"
	"github.com/crasofuentes-hub/irrl/realm"
)

type realmHandlers struct {
	l *ledger.Ledger
}

type createRealmRequest struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parent      *string          `json:"parent"`
	Domain      string           `json:"domain"`
	Rules       model.RealmRules `json:"rules"`
	PublicKey   string           `json:"publicKey"`
	CreatedBy   string           `json:"createdBy"`
}

// handleCollection serves POST /realms (create) and GET /realms (list,
// filtered by domain/parent and paginated by limit/offset).
func (h *realmHandlers) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createRealmRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		created, err := h.l.Realms.Create(realm.CreateInput{
			ID: req.ID, Name: req.Name, Description: req.Description, Parent: req.Parent,
			Domain: req.Domain, Rules: req.Rules, PublicKey: req.PublicKey, CreatedBy: req.CreatedBy,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		q := r.URL.Query()
		all, err := h.l.Realms.List(q.Get("domain"))
		if err != nil {
			writeError(w, err)
			return
		}
		if parent := q.Get("parent"); parent != "" {
			filtered := all[:0:0]
			for _, realmRow := range all {
				if realmRow.Parent != nil && *realmRow.Parent == parent {
					filtered = append(filtered, realmRow)
				}
			}
			all = filtered
		}
		writeJSON(w, http.StatusOK, paginate(all, q))

	default:
		writeMethodNotAllowed(w)
	}
}

// handleItem serves GET /realms/{id|path} and GET /realms/{id}/children.
func (h *realmHandlers) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/realms/")
	if rest == "" {
		writeError(w, apierrNotFound("realm"))
		return
	}

	if id, ok := strings.CutSuffix(rest, "/children"); ok {
		recursive := r.URL.Query().Get("recursive") == "true"
		children, err := h.l.Realms.Children(id, recursive)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, children)
		return
	}

	result, err := h.l.Realms.Get(rest)
	if err != nil && strings.Contains(rest, "/") {
		result, err = h.l.Realms.GetByPath(rest)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// paginate applies limit/offset query params (default limit: all,
// default offset: 0) to a slice already filtered by the caller.
func paginate[T any](items []T, q url.Values) []T {
	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(items) {
			items = items[:n]
		}
	}
	return items
}
