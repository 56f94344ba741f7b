package scene

import (
	"math"

	"github.com/PreritO/cartesia-hackathon/pkg/detect"
)

// Player clustering thresholds. A tight pack of players usually means a
// set piece, goal-line stand, or pile-up.
const (
	clusterMinPlayers = 4
	clusterStddevMax  = 0.15
)

// DetectCluster reports whether the players are packed tightly, and if so
// names the zone of the pack. Tightness is the standard deviation of the
// players' normalized horizontal centers.
func DetectCluster(persons []detect.Object, frameW, frameH int, sport string) (zone string, ok bool) {
	if len(persons) < clusterMinPlayers {
		return "", false
	}

	var sumX, sumY float64
	xs := make([]float64, len(persons))
	for i, p := range persons {
		x, y := p.NormCenter(frameW, frameH)
		xs[i] = x
		sumX += x
		sumY += y
	}

	meanX := sumX / float64(len(xs))
	var variance float64
	for _, x := range xs {
		d := x - meanX
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(xs)))

	if stddev >= clusterStddevMax {
		return "", false
	}

	meanY := sumY / float64(len(persons))
	return Zone(meanX, meanY, sport), true
}
