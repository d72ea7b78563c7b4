// Package bridge is the text boundary of the link service: callers hand in
// JSON documents and get JSON documents back. Inside, only typed values move.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linkstash/internal/domain"
	"github.com/MrSnakeDoc/linkstash/internal/service"
)

// Kind classifies a LinkSavingError.
type Kind string

const (
	KindMalformedURL      Kind = "malformed_url"
	KindDuplicateLink     Kind = "duplicate_link"
	KindStaleSnapshot     Kind = "stale_snapshot"
	KindIOFailure         Kind = "io_failure"
	KindEncodingFailure   Kind = "encoding_failure"
	KindInvalidCollection Kind = "invalid_collection"
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindCanceled          Kind = "canceled"
	KindInternal          Kind = "internal"
)

const (
	ResultLink  = "link"
	ResultError = "error"
)

// LinkSavingError is the structured failure handed back to callers.
type LinkSavingError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	ExistingID string `json:"existing_id,omitempty"`
	Retryable  bool   `json:"retryable"`
}

func (e *LinkSavingError) Error() string { return string(e.Kind) + ": " + e.Message }

// Reply is the tagged result of RequestAdd. Result is ResultLink or ResultError.
type Reply struct {
	Result     string            `json:"result"`
	Link       *domain.Link      `json:"link,omitempty"`
	Collection domain.Collection `json:"collection,omitempty"`
	Error      *LinkSavingError  `json:"error,omitempty"`
}

// Bridge exposes the service through JSON text.
type Bridge struct {
	svc *service.Service
}

func New(svc *service.Service) *Bridge {
	return &Bridge{svc: svc}
}

// RequestAdd decodes a candidate and the caller's collection, runs the add
// pipeline and encodes the tagged Reply.
func (b *Bridge) RequestAdd(ctx context.Context, candidateJSON, collectionJSON string) string {
	var in domain.LinkInput
	if err := json.Unmarshal([]byte(candidateJSON), &in); err != nil {
		return encodeReply(errorReply(invalidInput("candidate", err)))
	}

	snapshot, err := DecodeCollection(collectionJSON)
	if err != nil {
		return encodeReply(errorReply(invalidInput("collection", err)))
	}

	res, err := b.svc.Add(ctx, in, snapshot)
	if err != nil {
		return encodeReply(errorReply(Classify(err)))
	}
	return encodeReply(LinkReply(res))
}

// RequestStore replaces the whole collection. It returns nil on success and
// the encoded LinkSavingError otherwise.
func (b *Bridge) RequestStore(ctx context.Context, collectionJSON string) *string {
	c, err := DecodeCollection(collectionJSON)
	if err != nil {
		return encodeError(invalidInput("collection", err))
	}
	if err := b.svc.Store(ctx, c); err != nil {
		return encodeError(Classify(err))
	}
	return nil
}

// RequestRead returns the encoded collection, or nil when none was ever stored.
func (b *Bridge) RequestRead(ctx context.Context) (*string, error) {
	c, exists, err := b.svc.Read(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	if !exists {
		return nil, nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return nil, &LinkSavingError{Kind: KindEncodingFailure, Message: err.Error()}
	}
	s := string(data)
	return &s, nil
}

// LinkReply wraps a successful add or update.
func LinkReply(res service.Result) Reply {
	link := res.Link
	return Reply{Result: ResultLink, Link: &link, Collection: res.Collection}
}

func errorReply(e *LinkSavingError) Reply {
	return Reply{Result: ResultError, Error: e}
}

// DecodeCollection parses a caller-supplied collection. Empty text and JSON
// null are the empty collection.
func DecodeCollection(text string) (domain.Collection, error) {
	if text == "" {
		return domain.Collection{}, nil
	}
	var c domain.Collection
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = domain.Collection{}
	}
	return c, nil
}

// Classify maps an error from the service onto a LinkSavingError.
func Classify(err error) *LinkSavingError {
	var lse *LinkSavingError
	if errors.As(err, &lse) {
		return lse
	}

	out := &LinkSavingError{Message: err.Error(), Retryable: domain.IsRetryable(err)}

	var dup *domain.DuplicateLinkError
	switch {
	case errors.As(err, &dup):
		out.Kind = KindDuplicateLink
		out.ExistingID = dup.ExistingID
	case errors.Is(err, domain.ErrDuplicateLink):
		out.Kind = KindDuplicateLink
	case errors.Is(err, domain.ErrMalformedURL):
		out.Kind = KindMalformedURL
	case errors.Is(err, domain.ErrStaleSnapshot):
		out.Kind = KindStaleSnapshot
	case errors.Is(err, domain.ErrInvalidCollection):
		out.Kind = KindInvalidCollection
	case errors.Is(err, domain.ErrEncodingFailure):
		out.Kind = KindEncodingFailure
	case errors.Is(err, domain.ErrIOFailure):
		out.Kind = KindIOFailure
	case errors.Is(err, domain.ErrNotFound):
		out.Kind = KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Kind = KindCanceled
	default:
		out.Kind = KindInternal
	}
	return out
}

func invalidInput(what string, err error) *LinkSavingError {
	return &LinkSavingError{Kind: KindInvalidInput, Message: fmt.Sprintf("invalid %s: %v", what, err)}
}

func encodeReply(r Reply) string {
	data, err := json.Marshal(r)
	if err != nil {
		// Only reachable if a Link stops being marshalable.
		return fmt.Sprintf(`{"result":%q,"error":{"kind":%q,"message":%q,"retryable":false}}`,
			ResultError, KindEncodingFailure, err.Error())
	}
	return string(data)
}

func encodeError(e *LinkSavingError) *string {
	data, err := json.Marshal(e)
	if err != nil {
		s := e.Error()
		return &s
	}
	s := string(data)
	return &s
}
