package client

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophershop/internal/common"
)

// TransportError is a failed remote call: either a non-2xx answer
// (StatusCode set) or a network failure (StatusCode 0, Err set).
type TransportError struct {
	Op         string
	StatusCode int
	// Message is the provider's error message, e.g. "EMAIL_NOT_FOUND".
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	parts := []string{e.Op}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	switch target {
	case common.ErrUnavailable:
		return e.StatusCode == 0 || e.StatusCode == http.StatusServiceUnavailable
	case common.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case common.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Code returns the provider error code: the first word of Message, as the
// identity provider appends details after " : ".
func (e *TransportError) Code() string {
	for i, r := range e.Message {
		if r == ' ' || r == ':' {
			return e.Message[:i]
		}
	}
	return e.Message
}
