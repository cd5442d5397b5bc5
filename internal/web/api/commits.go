package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splashsync/connector/internal/commit"
	"github.com/splashsync/connector/internal/web/response"
)

var errNoCommits = errors.New("commit manager is not configured")

type commitRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

func (a *API) requireCommits(w http.ResponseWriter) bool {
	if a.commits == nil {
		response.RenderError(w, http.StatusServiceUnavailable, errNoCommits)
		return false
	}
	return true
}

func (a *API) commit(w http.ResponseWriter, r *http.Request) {
	if !a.requireCommits(w) {
		return
	}
	var req commitRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.IDs) == 0 {
		response.RenderError(w, http.StatusBadRequest, errors.New("ids must not be empty"))
		return
	}

	action, err := commit.ParseAction(req.Action)
	if err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.commits.Commit(chi.URLParam(r, "type"), action, req.IDs...); err != nil {
		response.RenderError(w, http.StatusUnprocessableEntity, err)
		return
	}
	response.JSON(w, http.StatusAccepted, map[string]int{"pending": a.commits.Len()})
}

func (a *API) pendingCommits(w http.ResponseWriter, r *http.Request) {
	if !a.requireCommits(w) {
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"commits": a.commits.Pending()})
}

func (a *API) flushCommits(w http.ResponseWriter, r *http.Request) {
	if !a.requireCommits(w) {
		return
	}
	n, err := a.commits.Flush(r.Context())
	if err != nil {
		response.RenderError(w, http.StatusBadGateway, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"flushed": n})
}
