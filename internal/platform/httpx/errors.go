// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"
)

// Mapping translates a domain error into a problem response. An empty
// Detail echoes the error text.
type Mapping struct {
	Target error
	Status int
	Title  string
	Detail string
}

// Timeouts maps cancelled or expired request contexts to 504.
var Timeouts = []Mapping{
	{Target: context.DeadlineExceeded, Status: http.StatusGatewayTimeout, Title: "Timeout"},
	{Target: context.Canceled, Status: http.StatusGatewayTimeout, Title: "Timeout"},
}

// RespondError writes the first mapping err matches and reports whether one
// did. Unmatched errors get a bare 500 so internals never reach the client.
func RespondError(w http.ResponseWriter, err error, mappings ...Mapping) bool {
	for _, m := range mappings {
		if m.Target == nil || !errors.Is(err, m.Target) {
			continue
		}
		detail := m.Detail
		if detail == "" {
			detail = err.Error()
		}
		Problem(w, m.Status, m.Title, detail)
		return true
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
	return false
}
