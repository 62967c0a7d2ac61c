package upstream

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Error is a non-success answer from a remote API.
type Error struct {
	Provider   string
	StatusCode int
	Status     string
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s error: %s", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s error: %s: %s", e.Provider, e.Status, e.Body)
}

// FromResponse drains (up to a limit) the body of a failed response into an Error.
// The caller still owns resp.Body and must close it.
func FromResponse(provider string, resp *http.Response) *Error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &Error{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Status:     status,
		Body:       strings.TrimSpace(string(b)),
	}
}

// OK reports whether the status code is 2xx.
func OK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
