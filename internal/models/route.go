// internal/models/route.go
package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type RouteHandler func(ctx context.Context, req RequestData) Envelope

type RouteDefinition struct {
	Path        string
	Method      string
	Handler     RouteHandler
	Description string
}

var ErrInvalidRoute = errors.New("INVALID_ROUTE")

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

func IsSupportedMethod(method string) bool {
	return supportedMethods[strings.ToUpper(method)]
}

// HasBody reports whether requests for method carry a JSON body.
func HasBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func (d RouteDefinition) Validate() error {
	if !IsSupportedMethod(d.Method) {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRoute, d.Method)
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: %s %s has no handler", ErrInvalidRoute, d.Method, d.Path)
	}
	return nil
}
