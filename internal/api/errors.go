package api

import "fmt"

// fallbackMessage substitutes for non-OK responses that carry no message.
const fallbackMessage = "Something went wrong"

// Error is a non-2xx response from the backend, carrying the
// server-supplied message when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// IsStatus reports whether err is a backend error with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Status == status
}
