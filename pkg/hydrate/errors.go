package hydrate

import (
	"errors"
	"net/http"

	"github.com/CTAG07/hxql/pkg/pages"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUpstream       = errors.New("upstream failure")
	ErrRender         = errors.New("render failure")
)

// Outcome labels used in logs, metrics and stats.
const (
	OutcomeOK             = "ok"
	OutcomeNotFound       = "not_found"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeUpstream       = "upstream_failure"
	OutcomeRender         = "render_failure"
	OutcomeError          = "error"
)

// StatusCode maps a pipeline error to an HTTP status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, pages.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Outcome maps a pipeline error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, pages.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidRequest):
		return OutcomeInvalidRequest
	case errors.Is(err, ErrUpstream):
		return OutcomeUpstream
	case errors.Is(err, ErrRender):
		return OutcomeRender
	default:
		return OutcomeError
	}
}
