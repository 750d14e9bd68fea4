// Package github adapts the GitHub Git Data API into a local
// content-addressed git object store: load/save/verify objects by hash
// and read/update/delete named refs, with the integrity repair needed
// because the API does not preserve objects byte for byte.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound marks an absent object. Ref reads report absence as an
// empty hash instead.
var ErrNotFound = errors.New("object not found")

// ErrBadRefName marks a ref name outside the refs/ namespace.
var ErrBadRefName = errors.New("invalid ref name")

// StatusError is an unexpected remote HTTP outcome, carrying the status
// code and the remote message when one was present.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("remote returned %d: %s", e.Status, msg)
}

// statusError builds a StatusError from a response body, extracting the
// remote's {"message": ...} when the body parses.
func statusError(status int, raw json.RawMessage) *StatusError {
	return &StatusError{Status: status, Message: remoteMessage(raw)}
}

func remoteMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}
