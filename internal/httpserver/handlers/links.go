package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkstash/internal/bridge"
	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/httpserver/deps"
)

// mutationRequest is the body of add, update and delete. Collection is the
// caller's snapshot; when omitted the stored collection is used.
type mutationRequest struct {
	Candidate  json.RawMessage `json:"candidate"`
	Collection json.RawMessage `json:"collection"`
}

// ListLinks returns the stored collection, [] when none exists yet.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := d.Bridge.RequestRead(r.Context())
		if err != nil {
			writeError(d, w, bridge.Classify(err))
			return
		}
		if text == nil {
			w.Header().Set("X-Collection-Exists", "false")
			writeRaw(d, w, http.StatusOK, "[]")
			return
		}
		w.Header().Set("X-Collection-Exists", "true")
		writeRaw(d, w, http.StatusOK, *text)
	}
}

// AddLink runs the add pipeline and answers with the tagged reply.
func AddLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, lse := decodeMutation(d, w, r, true)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		snapshot, lse := snapshotText(r.Context(), d, req.Collection)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		reply := d.Bridge.RequestAdd(r.Context(), string(req.Candidate), snapshot)
		writeRaw(d, w, replyStatus(reply, http.StatusCreated), reply)
	}
}

// StoreLinks replaces the whole collection with the request body.
func StoreLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, lse := readBody(d, w, r)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		if msg := d.Bridge.RequestStore(r.Context(), string(body)); msg != nil {
			var e bridge.LinkSavingError
			if err := json.Unmarshal([]byte(*msg), &e); err != nil {
				e = bridge.LinkSavingError{Kind: bridge.KindInternal, Message: *msg}
			}
			writeError(d, w, &e)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateLink replaces the link {id} in place.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, lse := decodeMutation(d, w, r, true)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		var in domain.LinkInput
		if err := json.Unmarshal(req.Candidate, &in); err != nil {
			writeError(d, w, invalidInput("candidate", err))
			return
		}

		snapshot, lse := snapshotCollection(r.Context(), d, req.Collection)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		res, err := d.Service.Update(r.Context(), chi.URLParam(r, "id"), in, snapshot)
		if err != nil {
			writeError(d, w, bridge.Classify(err))
			return
		}
		writeJSON(d, w, http.StatusOK, bridge.LinkReply(res))
	}
}

// DeleteLink removes the link {id}. The body is optional.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, lse := decodeMutation(d, w, r, false)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		snapshot, lse := snapshotCollection(r.Context(), d, req.Collection)
		if lse != nil {
			writeError(d, w, lse)
			return
		}

		c, err := d.Service.Remove(r.Context(), chi.URLParam(r, "id"), snapshot)
		if err != nil {
			writeError(d, w, bridge.Classify(err))
			return
		}
		writeJSON(d, w, http.StatusOK, c)
	}
}

func readBody(d deps.Deps, w http.ResponseWriter, r *http.Request) ([]byte, *bridge.LinkSavingError) {
	body := r.Body
	if d.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, d.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, invalidInput("body", err)
	}
	return data, nil
}

func decodeMutation(d deps.Deps, w http.ResponseWriter, r *http.Request, needCandidate bool) (mutationRequest, *bridge.LinkSavingError) {
	var req mutationRequest

	data, lse := readBody(d, w, r)
	if lse != nil {
		return req, lse
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return req, invalidInput("body", err)
		}
	}
	if needCandidate && isAbsent(req.Candidate) {
		return req, invalidInput("body", errors.New("candidate is required"))
	}
	return req, nil
}

// snapshotText returns the caller's collection, or the stored one when absent.
func snapshotText(ctx context.Context, d deps.Deps, raw json.RawMessage) (string, *bridge.LinkSavingError) {
	if !isAbsent(raw) {
		return string(raw), nil
	}
	text, err := d.Bridge.RequestRead(ctx)
	if err != nil {
		return "", bridge.Classify(err)
	}
	if text == nil {
		return "", nil
	}
	return *text, nil
}

func snapshotCollection(ctx context.Context, d deps.Deps, raw json.RawMessage) (domain.Collection, *bridge.LinkSavingError) {
	text, lse := snapshotText(ctx, d, raw)
	if lse != nil {
		return nil, lse
	}
	c, err := bridge.DecodeCollection(text)
	if err != nil {
		return nil, invalidInput("collection", err)
	}
	return c, nil
}

func isAbsent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// replyStatus picks the status for a tagged reply produced by the bridge.
func replyStatus(reply string, success int) int {
	var head struct {
		Result string `json:"result"`
		Error  *struct {
			Kind bridge.Kind `json:"kind"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(reply), &head); err != nil {
		return http.StatusInternalServerError
	}
	if head.Result == bridge.ResultLink {
		return success
	}
	if head.Error == nil {
		return http.StatusInternalServerError
	}
	return StatusFor(head.Error.Kind)
}

func invalidInput(what string, err error) *bridge.LinkSavingError {
	return &bridge.LinkSavingError{Kind: bridge.KindInvalidInput, Message: fmt.Sprintf("invalid %s: %v", what, err)}
}
