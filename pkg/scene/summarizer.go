package scene

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PreritO/cartesia-hackathon/pkg/detect"
)

// Summary is the per-frame output handed to the trigger and composer.
type Summary struct {
	Label       Label
	Text        string
	BallPresent bool
	BallZone    string
	Persons     int
}

// Summarizer builds scene summaries. It owns the ball trajectory queue;
// one Summarizer per session. Summarize runs on the session goroutine
// while SetSport arrives from the control goroutine, so sport access is
// guarded.
type Summarizer struct {
	mu    sync.RWMutex
	sport string

	traj Trajectory
}

// NewSummarizer creates a summarizer for the given sport ("soccer" or
// "football").
func NewSummarizer(sport string) *Summarizer {
	return &Summarizer{sport: sport}
}

// SetSport switches the active sport mid-session.
func (s *Summarizer) SetSport(sport string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sport = sport
}

// Sport returns the active sport.
func (s *Summarizer) Sport() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sport
}

// Trajectory exposes the ball path length, mainly for tests.
func (s *Summarizer) Trajectory() *Trajectory {
	return &s.traj
}

// Summarize classifies the frame and composes the text summary. The only
// side effect is appending the ball centroid to the bounded trajectory.
func (s *Summarizer) Summarize(objects []detect.Object, frameW, frameH int) Summary {
	sport := s.Sport()

	balls := detect.Balls(objects)
	persons := detect.Persons(objects)

	label := Classify(len(persons), len(balls))

	var parts []string
	parts = append(parts, label.Phrase())

	switch len(persons) {
	case 0:
	case 1:
		parts = append(parts, "1 player visible")
	default:
		parts = append(parts, fmt.Sprintf("%d players visible", len(persons)))
	}

	summary := Summary{
		Label:   label,
		Persons: len(persons),
	}

	if len(balls) > 0 {
		ball := balls[0]
		x, y := ball.NormCenter(frameW, frameH)
		s.traj.Add(x, y)

		summary.BallPresent = true
		summary.BallZone = Zone(x, y, sport)
		parts = append(parts, "ball at "+summary.BallZone)

		if movement := s.traj.Movement(); movement != "" {
			parts = append(parts, "ball "+movement)
		}
	}

	if zone, ok := DetectCluster(persons, frameW, frameH, sport); ok {
		parts = append(parts, fmt.Sprintf("%d players bunched tightly at %s", len(persons), zone))
	}

	summary.Text = strings.Join(parts, ", ")
	return summary
}
