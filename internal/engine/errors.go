package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// RemoteError is a non-2xx response from the review engine. The upstream
// status code and raw body are preserved for the caller.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("engine request failed (%d): %s", e.Status, e.Body)
}

var statusInMessage = regexp.MustCompile(`\((\d{3})\)`)

// StatusFromError recovers an HTTP status for a failure: a RemoteError's own
// status, a "(NNN)" marker in the error text, or 500.
func StatusFromError(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status
	}
	if err != nil {
		if m := statusInMessage.FindStringSubmatch(err.Error()); m != nil {
			if status, convErr := strconv.Atoi(m[1]); convErr == nil {
				return status
			}
		}
	}
	return 500
}
