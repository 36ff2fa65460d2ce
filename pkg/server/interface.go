/*
Package server exposes the completion service over msgpack IPC and HTTP.

# IPC

Clients write msgpack maps to the server's input and read msgpack maps from
its output. Every request carries an id that is echoed in the answer, and an
optional type that defaults to "complete". Requests are answered
concurrently, so answers can arrive out of order.

A completion request:

	{"id": "req_001", "p": "gol", "l": 24}

is answered with suggestions ranked in dictionary order:

	{"id": "req_001", "s": [{"w": "Gold", "r": 1}, {"w": "Goldfish", "r": 2}], "c": 2, "t": 41}

t is the time taken in microseconds. Only the latest completion request is
current; one overtaken by a newer request while the dictionary was loading
or being searched is answered with "stale": true and no suggestions.

Other request types:

	{"id": "h1", "type": "health"}  -> {"id": "h1", "status": "ok"}
	{"id": "s1", "type": "stats"}   -> {"id": "s1", "stats": {...}}

Failures are reported as:

	{"id": "req_002", "e": "query too long: 61 > 60 characters", "c": 400}

The first message written after start is {"status": "ready"}. The
dictionary may still be loading at that point; completion requests wait for
it.

# HTTP

	GET /complete?q=gol&limit=24   JSON completion
	GET /stats                     JSON statistics
	GET /metrics                   Prometheus metrics
	GET /live, /ready              liveness and readiness probes
*/
package server

const (
	TypeComplete = "complete"
	TypeHealth   = "health"
	TypeStats    = "stats"
)

// Request is any IPC request. Fields not used by its type are ignored.
type Request struct {
	ID     string `msgpack:"id"`
	Type   string `msgpack:"type,omitempty"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w" json:"word"`
	Rank uint16 `msgpack:"r" json:"rank"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id" json:"id,omitempty"`
	Suggestions []CompletionSuggestion `msgpack:"s" json:"suggestions"`
	Count       int                    `msgpack:"c" json:"count"`
	TimeTaken   int64                  `msgpack:"t" json:"time_us"`
	Stale       bool                   `msgpack:"stale,omitempty" json:"stale,omitempty"`
}

// CompletionError holds basic error information for requests
type CompletionError struct {
	ID    string `msgpack:"id" json:"id,omitempty"`
	Error string `msgpack:"e" json:"error"`
	Code  int    `msgpack:"c" json:"code"`
}

// StatusResponse answers health requests and announces readiness.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// StatsResponse carries completer and loader statistics.
type StatsResponse struct {
	ID    string         `msgpack:"id" json:"id,omitempty"`
	Stats map[string]int `msgpack:"stats" json:"stats"`
}
