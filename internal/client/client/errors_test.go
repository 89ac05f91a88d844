package client

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/gophershop/internal/common"
)

func TestTransportError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    *TransportError
		target error
		want   bool
	}{
		{"network", &TransportError{Op: "x", Err: errors.New("refused")}, common.ErrUnavailable, true},
		{"503", &TransportError{Op: "x", StatusCode: http.StatusServiceUnavailable}, common.ErrUnavailable, true},
		{"404", &TransportError{Op: "x", StatusCode: http.StatusNotFound}, common.ErrNotFound, true},
		{"401", &TransportError{Op: "x", StatusCode: http.StatusUnauthorized}, common.ErrUnauthorized, true},
		{"403", &TransportError{Op: "x", StatusCode: http.StatusForbidden}, common.ErrUnauthorized, true},
		{"500 not found", &TransportError{Op: "x", StatusCode: 500}, common.ErrNotFound, false},
		{"400 unavailable", &TransportError{Op: "x", StatusCode: 400}, common.ErrUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	assert.Equal(t, "get products/p1: status 404: NOT_FOUND",
		(&TransportError{Op: "get products/p1", StatusCode: 404, Message: "NOT_FOUND"}).Error())
	assert.Equal(t, "list products: connection refused",
		(&TransportError{Op: "list products", Err: errors.New("connection refused")}).Error())
}

func TestTransportError_Code(t *testing.T) {
	assert.Equal(t, "WEAK_PASSWORD", (&TransportError{Message: "WEAK_PASSWORD : Password should be at least 6 characters"}).Code())
	assert.Equal(t, "EMAIL_EXISTS", (&TransportError{Message: "EMAIL_EXISTS"}).Code())
	assert.Equal(t, "", (&TransportError{}).Code())
}
