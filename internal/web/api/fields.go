package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/splashsync/connector/internal/fields"
	"github.com/splashsync/connector/internal/store"
	"github.com/splashsync/connector/internal/web/response"
)

var errNoRepository = errors.New("field storage is not configured")

func (a *API) requireRepo(w http.ResponseWriter) bool {
	if a.repo == nil {
		response.RenderError(w, http.StatusServiceUnavailable, errNoRepository)
		return false
	}
	return true
}

// pathToken returns the token route parameter. chi matches against
// RawPath when the request carries one, leaving the parameter escaped.
func pathToken(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "token")
	if r.URL.RawPath == "" {
		return raw, nil
	}
	tok, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid token in path: %w", err)
	}
	return tok, nil
}

func (a *API) listFields(w http.ResponseWriter, r *http.Request) {
	if !a.requireRepo(w) {
		return
	}
	list, err := a.repo.List(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		a.renderStoreError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"fields": list})
}

// GET /objects/{type}/fields/{token} resolves an incoming token against the
// stored fields: exact ID first, then its base type.
func (a *API) getField(w http.ResponseWriter, r *http.Request) {
	if !a.requireRepo(w) {
		return
	}
	tok, err := pathToken(r)
	if err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}

	reg, err := store.LoadRegistry(r.Context(), a.repo, chi.URLParam(r, "type"))
	if err != nil {
		a.renderStoreError(w, err)
		return
	}

	f, err := reg.Resolve(tok)
	if err != nil {
		a.renderStoreError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, f)
}

func (a *API) saveField(w http.ResponseWriter, r *http.Request) {
	if !a.requireRepo(w) {
		return
	}
	var f fields.Field
	if err := response.DecodeJSON(r, &f); err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.repo.Save(r.Context(), chi.URLParam(r, "type"), &f); err != nil {
		a.renderStoreError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, &f)
}

func (a *API) deleteField(w http.ResponseWriter, r *http.Request) {
	if !a.requireRepo(w) {
		return
	}
	tok, err := pathToken(r)
	if err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.repo.Delete(r.Context(), chi.URLParam(r, "type"), tok); err != nil {
		a.renderStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listLists(w http.ResponseWriter, r *http.Request) {
	if !a.requireRepo(w) {
		return
	}
	reg, err := store.LoadRegistry(r.Context(), a.repo, chi.URLParam(r, "type"))
	if err != nil {
		a.renderStoreError(w, err)
		return
	}

	lists := make(map[string][]string)
	for _, name := range reg.Lists() {
		ids := []string{}
		for _, f := range reg.ListFields(name) {
			ids = append(ids, f.ID)
		}
		lists[name] = ids
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"lists": lists})
}

func (a *API) renderStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fields.ErrFieldNotFound):
		response.RenderError(w, http.StatusNotFound, err)
	case errors.Is(err, fields.ErrInvalidField):
		response.RenderError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, fields.ErrDuplicateField):
		response.RenderError(w, http.StatusConflict, err)
	default:
		a.logger.Error("field storage failed", zap.Error(err))
		response.RenderErrorWithCode(w, http.StatusInternalServerError, errors.New("field storage failed"), "")
	}
}
