package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/splashsync/connector/internal/token"
	"github.com/splashsync/connector/internal/web/response"
)

// InspectResult answers an inspect request. OK is false for an absent token.
type InspectResult struct {
	OK            bool                 `json:"ok"`
	Decomposition *token.Decomposition `json:"decomposition,omitempty"`
}

type inspectRequest struct {
	Token *string `json:"token"`
}

func inspect(tok *string) InspectResult {
	d, ok := token.ParseOf(tok)
	if !ok {
		return InspectResult{}
	}
	return InspectResult{OK: true, Decomposition: &d}
}

// GET /tokens/inspect?token=... ; a missing parameter is an absent token,
// "?token=" is the empty token.
func (a *API) inspectQuery(w http.ResponseWriter, r *http.Request) {
	var tok *string
	if values, ok := r.URL.Query()["token"]; ok && len(values) > 0 {
		tok = &values[0]
	}
	response.JSON(w, http.StatusOK, inspect(tok))
}

func (a *API) inspectBody(w http.ResponseWriter, r *http.Request) {
	var req inspectRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}
	response.JSON(w, http.StatusOK, inspect(req.Token))
}

type resolveRequest struct {
	Tokens []*string `json:"tokens"`
}

// ResolveResult is the base type of one token; OK is false for null
type ResolveResult struct {
	Token    *string `json:"token"`
	BaseType string  `json:"base_type"`
	OK       bool    `json:"ok"`
}

func (a *API) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}

	results := make([]ResolveResult, len(req.Tokens))
	for i, tok := range req.Tokens {
		base, ok := token.BaseTypeOf(tok)
		results[i] = ResolveResult{Token: tok, BaseType: base, OK: ok}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Encoding kinds accepted by POST /tokens/encode
const (
	KindList = "list"
	KindRef  = "ref"
)

type encodeRequest struct {
	Kind  string `json:"kind"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

func (a *API) encode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}

	tok, err := encodeToken(req.Kind, req.Left, req.Right)
	if err != nil {
		response.RenderError(w, http.StatusBadRequest, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"token": tok})
}

var errUnknownKind = errors.New("unknown encoding kind")

func encodeToken(kind, left, right string) (string, error) {
	switch kind {
	case KindList:
		return token.EncodeListMember(left, right), nil
	case KindRef:
		return token.EncodeIDReference(left, right), nil
	default:
		return "", fmt.Errorf("%w %q (expected %s or %s)", errUnknownKind, kind, KindList, KindRef)
	}
}
