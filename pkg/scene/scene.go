// Package scene turns per-frame detections into a classification label and
// a short natural-language summary for the commentary prompt.
//
// Classification and summarization are pure functions of the current
// detections plus a small bounded trajectory history owned by the
// Summarizer. No I/O happens here.
package scene

// Label classifies what the current frame shows.
type Label string

const (
	// ActivePlay: a full field of players with the ball in view.
	ActivePlay Label = "active_play"

	// PlayWithoutBall: a full field of players but no ball detected.
	PlayWithoutBall Label = "play_without_ball"

	// CloseUp: camera tight on one to three people.
	CloseUp Label = "close_up"

	// NoPlayers: crowd shots, replays, graphics.
	NoPlayers Label = "no_players"

	// Transition: anything that fits none of the above.
	Transition Label = "transition"
)

// Classify maps player and ball counts to a scene label.
// Priority order matters; first match wins.
func Classify(persons, balls int) Label {
	switch {
	case persons >= 6 && balls >= 1:
		return ActivePlay
	case persons >= 6:
		return PlayWithoutBall
	case persons >= 1 && persons <= 3:
		return CloseUp
	case persons == 0:
		return NoPlayers
	default:
		return Transition
	}
}

// Phrase returns the human wording used in summaries for a label.
func (l Label) Phrase() string {
	switch l {
	case ActivePlay:
		return "Active play in progress"
	case PlayWithoutBall:
		return "Players on the field but the ball is out of view"
	case CloseUp:
		return "Close-up shot"
	case NoPlayers:
		return "No players in view"
	default:
		return "Transition between plays"
	}
}
