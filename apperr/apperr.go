// Package apperr defines the error taxonomy shared across the service and
// its mapping to HTTP status codes. Errors are plain wrapped stdlib errors
// (errors.New / fmt.Errorf with %w), matched with errors.Is against the
// sentinels below — there is no custom error interface or third-party error
// library involved, matching how every repo in this codebase's lineage
// handles errors.
package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors. Wrap these with fmt.Errorf("...: %w", ErrX) to add
// context while preserving errors.Is matchability.
var (
	// ErrNotFound maps to 404: an entity lookup missed.
	ErrNotFound = errors.New("not found")
	// ErrValidation maps to 400: an unknown entity/relationship type or
	// malformed request.
	ErrValidation = errors.New("validation failed")
	// ErrBackendUnavailable maps to 503: the graph or vector backend could
	// not service this request at all (as opposed to a per-item failure).
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrEmbedding maps to 500 for a single-query embedding failure; batch
	// element failures are instead recorded per item and never reach here.
	ErrEmbedding = errors.New("embedding request failed")
	// ErrDatabase maps to 500: a relational-store failure.
	ErrDatabase = errors.New("database error")
	// ErrConfiguration is fatal at startup only; never surfaced over HTTP.
	ErrConfiguration = errors.New("configuration error")
)

// StatusFor maps an error to the HTTP status the taxonomy assigns it.
// Unrecognized errors default to 500, matching "otherwise: 500" in the
// error-handling design.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrEmbedding), errors.Is(err, ErrDatabase):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON shape returned for every non-2xx response.
type Body struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// ToBody builds the response body for err, using status as computed by
// StatusFor unless the caller already knows it.
func ToBody(err error) (Body, int) {
	status := StatusFor(err)
	return Body{Error: err.Error(), Status: status}, status
}
