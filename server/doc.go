/*
Package server implements a msgpack IPC loop for dictionary lookups.

The server reads a stream of msgpack-encoded requests from its input and
writes one response per request to its output, in request order. It is
meant to run as a child process of an editor or reader application that
talks to it over stdin and stdout.

A lookup request carries the query text and optional mode tokens:

	{"id": "req_001", "q": "mind", "index": "auto", "search": "auto", "view": "auto", "limit": 20}

The response carries the assembled entries and the view that was applied:

	{"id": "req_001", "items": [...], "view": "full", "t": 3}

Grade responses also carry the tier. A failed request gets a response with
an error message and a code; the loop keeps serving. An undecodable frame
ends the loop since the stream cannot be resynchronized.
*/
package server
