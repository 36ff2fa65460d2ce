package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/config"
	"github.com/bastiangx/itemserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles msgpack IPC for completions
type Server struct {
	completer *suggest.Completer
	session   *suggest.Session
	cfg       config.ServerConfig
	metrics   *Metrics

	in  io.Reader
	out *bufio.Writer
	enc *msgpack.Encoder
	wmu sync.Mutex
	wg  sync.WaitGroup
}

// NewServer creates an IPC server reading requests from in and writing
// answers to out, usually stdin and stdout.
func NewServer(completer *suggest.Completer, cfg config.ServerConfig, in io.Reader, out io.Writer) *Server {
	w := bufio.NewWriter(out)
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return &Server{
		completer: completer,
		session:   suggest.NewSession(completer),
		cfg:       cfg,
		in:        in,
		out:       w,
		enc:       enc,
	}
}

// WithMetrics records request metrics on m.
func (s *Server) WithMetrics(m *Metrics) *Server {
	s.metrics = m
	return s
}

// Start announces readiness and serves requests until the input is
// exhausted or ctx is done. Pending completions are answered before it returns.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting Server.")
	defer s.wg.Wait()

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	in := &readErrRecorder{r: s.in}
	dec := msgpack.NewDecoder(bufio.NewReader(in))
	for {
		if ctx.Err() != nil {
			return nil
		}
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			s.sendError("", "invalid request", 400)
			// A bad type code is consumed by the decoder, so decoding resumes
			// at the next byte. Truncated input and read failures end the loop.
			if in.err == nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debugf("Skipping undecodable request: %v", err)
				continue
			}
			log.Errorf("Reading request: %v", err)
			return fmt.Errorf("reading request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			log.Debugf("Unmarshaling request: %v", err)
			s.sendError("", "invalid request", 400)
			continue
		}
		s.handleRequest(ctx, req)
	}
}

// readErrRecorder remembers the first read error other than io.EOF.
type readErrRecorder struct {
	r   io.Reader
	err error
}

func (rr *readErrRecorder) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && err != io.EOF && rr.err == nil {
		rr.err = err
	}
	return n, err
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	switch req.Type {
	case "", TypeComplete:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleComplete(ctx, req)
		}()
	case TypeHealth:
		s.send(StatusResponse{ID: req.ID, Status: s.status()})
	case TypeStats:
		s.send(StatsResponse{ID: req.ID, Stats: s.completer.Stats()})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown request type: %s", req.Type), 400)
	}
}

func (s *Server) status() string {
	switch {
	case s.completer.Ready():
		return "ok"
	case s.completer.Loader().Err() != nil:
		return "error"
	default:
		return "loading"
	}
}

// handleComplete validates the query, waits for the dictionary and answers
// with the suggestions, or with a stale marker if a newer query arrived.
func (s *Server) handleComplete(ctx context.Context, req Request) {
	start := time.Now()
	if err := utils.ValidateQuery(req.Prefix, s.cfg.MinPrefix, s.cfg.MaxPrefix); err != nil {
		log.Debugf("Rejected query '%s': %v", req.Prefix, err)
		s.metrics.Observe(TransportIPC, OutcomeInvalid, 0, 0)
		s.sendError(req.ID, err.Error(), 400)
		return
	}

	suggestions, current := s.session.Submit(ctx, req.Prefix, req.Limit)
	elapsed := time.Since(start)

	if current {
		if err := s.completer.Loader().Err(); err != nil {
			s.sendError(req.ID, "dictionary unavailable", 503)
			return
		}
	}

	resp := CompletionResponse{
		ID:          req.ID,
		Suggestions: toWire(suggestions),
		TimeTaken:   elapsed.Microseconds(),
		Stale:       !current,
	}
	if resp.Stale {
		resp.Suggestions = []CompletionSuggestion{}
	}
	resp.Count = len(resp.Suggestions)

	s.metrics.Observe(TransportIPC, outcomeFor(resp.Count, resp.Stale), elapsed, resp.Count)
	log.Debugf("Completed '%s': %d suggestions in %dus (stale=%t)", req.Prefix, resp.Count, resp.TimeTaken, resp.Stale)
	s.send(resp)
}

func toWire(suggestions []suggest.Suggestion) []CompletionSuggestion {
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{Word: sg.Word, Rank: sg.Rank}
	}
	return out
}

// send encodes one message and flushes it. Safe for concurrent use.
func (s *Server) send(msg any) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := s.enc.Encode(msg); err != nil {
		log.Errorf("Encoding response: %v", err)
		return err
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) {
	s.send(CompletionError{ID: id, Error: message, Code: code})
}
