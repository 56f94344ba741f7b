// Package commentary assembles LLM prompts, parses the returned text, and
// turns it into speakable commentary turns.
package commentary

import "fmt"

// historyLimit bounds the rolling history. Only the text survives a turn;
// audio and frames are never retained.
const historyLimit = 5

// History is the rolling record of recent commentary lines, used to keep
// the model from repeating itself. Per-session; not safe for concurrent
// use.
type History struct {
	lines []string
}

// Append records a spoken line with its persona label, truncating to the
// last historyLimit entries.
func (h *History) Append(personaLabel, text string) {
	h.lines = append(h.lines, fmt.Sprintf("%s: %s", personaLabel, text))
	if len(h.lines) > historyLimit {
		h.lines = h.lines[len(h.lines)-historyLimit:]
	}
}

// Recent returns up to n most recent lines, oldest first.
func (h *History) Recent(n int) []string {
	if n <= 0 || len(h.lines) == 0 {
		return nil
	}
	if n > len(h.lines) {
		n = len(h.lines)
	}
	out := make([]string, n)
	copy(out, h.lines[len(h.lines)-n:])
	return out
}

// Len returns the number of retained lines.
func (h *History) Len() int {
	return len(h.lines)
}

// Reset clears the history.
func (h *History) Reset() {
	h.lines = nil
}
