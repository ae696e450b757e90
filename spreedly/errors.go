package spreedly

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alovak/cardflow-gateway/wire"
)

// ErrAPI is matched by every *APIError.
var ErrAPI = errors.New("spreedly api error")

const emptyErrorMessage = "Error did not contain a valid response"

// APIError is returned for responses with an error status. Payload holds the
// decoded body unwrapped from its root, the same shape a successful call
// returns.
type APIError struct {
	StatusCode int
	Payload    any
	Err        error // set when the body could not be decoded or unwrapped
}

func (e *APIError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("%s: status %d", ErrAPI, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrAPI, e.StatusCode, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Message flattens the payload into a readable string.
func (e *APIError) Message() string {
	return message(e.Payload)
}

func message(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *wire.Record:
		for _, key := range []string{"text", "message", "error"} {
			if s := t.String(key); s != "" {
				return s
			}
		}
		if nested, ok := t.Get("error"); ok {
			return message(nested)
		}
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := message(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
