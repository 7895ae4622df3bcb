package server

import "github.com/poiesic/lexidict/result"

// Error codes carried by failed responses.
const (
	CodeBadRequest  = 400
	CodeInternal    = 500
	CodeUnavailable = 503
)

// Request is one lookup request.
type Request struct {
	ID     string `msgpack:"id"`
	Query  string `msgpack:"q"`
	Index  string `msgpack:"index,omitempty"`
	Search string `msgpack:"search,omitempty"`
	View   string `msgpack:"view,omitempty"`
	Limit  int    `msgpack:"limit,omitempty"`
}

// Response answers the request with the same ID.
type Response struct {
	ID     string         `msgpack:"id"`
	Items  []result.Entry `msgpack:"items"`
	View   string         `msgpack:"view,omitempty"`
	Search string         `msgpack:"search,omitempty"`
	Tier   *int           `msgpack:"tier,omitempty"`
	Error  string         `msgpack:"error,omitempty"`
	Code   int            `msgpack:"code,omitempty"`
	// TimeTaken is the handling time in milliseconds.
	TimeTaken int64 `msgpack:"t"`
}
