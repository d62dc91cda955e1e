// Package api is the client side of the bookshelf backend HTTP API.
//
// Every call is a suspension point for the caller: it blocks until the backend
// answers, the per-request timeout expires, or ctx is cancelled. Failures are
// classified into the sentinels in errors.go so that components can turn them
// into user-visible messages with Message.
package api
