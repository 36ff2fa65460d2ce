package suggest

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Session sequences the queries of a single user. Only the most recently
// submitted query is current; answers to older ones are stale and should be
// dropped by the caller.
type Session struct {
	completer *Completer
	gen       atomic.Uint64
}

func NewSession(c *Completer) *Session {
	return &Session{completer: c}
}

// Submit waits for the dictionary, completes query and reports whether query
// is still the latest one submitted. On a load failure or a cancelled ctx the
// suggestions are empty.
func (s *Session) Submit(ctx context.Context, query string, limit int) ([]Suggestion, bool) {
	id := s.gen.Add(1)

	if err := s.completer.Wait(ctx); err != nil {
		log.Debugf("Query '%s' not served: %v", query, err)
		return []Suggestion{}, s.gen.Load() == id
	}
	if s.gen.Load() != id {
		return []Suggestion{}, false
	}

	suggestions := s.completer.Complete(query, limit)
	return suggestions, s.gen.Load() == id
}

// Generation returns the number of queries submitted so far.
func (s *Session) Generation() uint64 {
	return s.gen.Load()
}
