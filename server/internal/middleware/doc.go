// Package middleware provides the http.Handler wrappers applied to every
// pipeline-server route: CORS, request ids, access logging and panic
// recovery.
//
// Each middleware has the signature func(http.Handler) http.Handler and is
// composed with Chain.
package middleware

import "net/http"

// Chain wraps h so that mws[0] is the outermost handler.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
