// Package cli reads queries from a terminal and prints their completions,
// for trying out dictionaries by hand.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	rankStyle = lipgloss.NewStyle().Faint(true)
)

// InputHandler reads one query per line and prints numbered suggestions.
type InputHandler struct {
	completer       suggest.ICompleter
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	in              io.Reader
	out             *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, minLength, maxLength, limit int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		completer:       completer,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		in:              in,
		out: log.NewWithOptions(out, log.Options{
			ReportTimestamp: false,
			Level:           log.InfoLevel,
		}),
	}
}

// Start runs the prompt loop until the input ends or ctx is done. If the
// completer can wait for its dictionary, the loop starts once it is loaded.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("itemserve CLI")

	if w, ok := h.completer.(interface{ Wait(context.Context) error }); ok {
		h.out.Print("loading dictionary...")
		if err := w.Wait(ctx); err != nil {
			return fmt.Errorf("loading dictionary: %w", err)
		}
	}
	h.out.Print("type something and press Enter to see the suggestions (Ctrl+C to exit):")

	scanner := bufio.NewScanner(h.in)
	for {
		h.out.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		// Spaces are part of item names, so only the line ending goes.
		prefix := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(prefix) == "" {
			continue
		}
		h.handleInput(prefix)
	}
}

// handleInput validates a single query and prints its suggestions.
func (h *InputHandler) handleInput(prefix string) {
	if err := utils.ValidateQuery(prefix, h.minPrefixLength, h.maxPrefixLength); err != nil {
		h.out.Errorf("%v: '%s'", err, prefix)
		return
	}

	start := time.Now()
	log.Debug("Processing request for", "prefix", prefix)
	suggestions := h.completer.Complete(prefix, h.suggestLimit)
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		h.out.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	h.out.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for _, s := range suggestions {
		h.out.Printf("%s %s", rankStyle.Render(fmt.Sprintf("%3d.", s.Rank)), wordStyle.Render(s.Word))
	}
}
